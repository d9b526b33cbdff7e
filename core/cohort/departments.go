package cohort

import "github.com/trezcool/masomo-insights/core"

var departmentModules = map[string][]string{
	"Computer Science": {"DSA", "AI", "DBMS", "CN", "OS"},
	"Business":         {"Accounting", "Finance", "Marketing", "HR", "Economics"},
	"Engineering":      {"Mechanics", "Thermodynamics", "Materials", "Circuits", "Maths"},
	"Education":        {"Curriculum", "Psychology", "Sociology", "Assessment", "Teaching Methods"},
}

// Modules returns the modules taught in department.
func Modules(department string) ([]string, error) {
	modules, ok := departmentModules[department]
	if !ok {
		return nil, &core.UnknownDepartmentError{Department: department}
	}
	return append([]string{}, modules...), nil
}
