package scoring

// Numeric and categorical feature names, as the model was trained on them.
var (
	NumericFeatures = []string{
		"Age", "Attendance (%)", "Midterm_Score", "Final_Score", "Assignments_Avg", "Quizzes_Avg",
		"Participation_Score", "Projects_Score", "Study_Hours_per_Week", "Stress_Level (1-10)",
		"Sleep_Hours_per_Night",
	}
	CategoricalFeatures = []string{
		"Gender", "Department", "Extracurricular_Activities", "Internet_Access_at_Home",
		"Parent_Education_Level", "Family_Income_Level", "Grade",
	}
)

type (
	// Features is one model input row, named after the training columns.
	Features struct {
		Age                       float64 `json:"Age"`
		Attendance                float64 `json:"Attendance (%)"`
		MidtermScore              float64 `json:"Midterm_Score"`
		FinalScore                float64 `json:"Final_Score"`
		AssignmentsAvg            float64 `json:"Assignments_Avg"`
		QuizzesAvg                float64 `json:"Quizzes_Avg"`
		ParticipationScore        float64 `json:"Participation_Score"`
		ProjectsScore             float64 `json:"Projects_Score"`
		StudyHoursPerWeek         float64 `json:"Study_Hours_per_Week"`
		StressLevel               float64 `json:"Stress_Level (1-10)"`
		SleepHoursPerNight        float64 `json:"Sleep_Hours_per_Night"`
		Gender                    string  `json:"Gender"`
		Department                string  `json:"Department"`
		ExtracurricularActivities string  `json:"Extracurricular_Activities"`
		InternetAccessAtHome      string  `json:"Internet_Access_at_Home"`
		ParentEducationLevel      string  `json:"Parent_Education_Level"`
		FamilyIncomeLevel         string  `json:"Family_Income_Level"`
		Grade                     string  `json:"Grade"`
	}

	// Input is a single prediction request, using the short ingestion names
	// Attendance and Stress_Level. Numeric fields are pointers: an absent value fails validation.
	Input struct {
		Age                       *int     `json:"Age" validate:"required,gte=0"`
		QuizzesAvg                *float64 `json:"Quizzes_Avg" validate:"required,gte=0"`
		FinalScore                *float64 `json:"Final_Score" validate:"required,gte=0"`
		StudyHoursPerWeek         *float64 `json:"Study_Hours_per_Week" validate:"required,gte=0"`
		StressLevel               *int     `json:"Stress_Level" validate:"required,gte=1,lte=10"`
		ProjectsScore             *float64 `json:"Projects_Score" validate:"required,gte=0"`
		ParticipationScore        *float64 `json:"Participation_Score" validate:"required,gte=0"`
		SleepHoursPerNight        *float64 `json:"Sleep_Hours_per_Night" validate:"required,gte=0,lte=24"`
		Attendance                *float64 `json:"Attendance" validate:"required,gte=0,lte=100"`
		MidtermScore              *float64 `json:"Midterm_Score" validate:"required,gte=0"`
		AssignmentsAvg            *float64 `json:"Assignments_Avg" validate:"required,gte=0"`
		Gender                    string   `json:"Gender" validate:"required"`
		Department                string   `json:"Department" validate:"required"`
		ExtracurricularActivities string   `json:"Extracurricular_Activities" validate:"required"`
		InternetAccessAtHome      string   `json:"Internet_Access_at_Home" validate:"required"`
		ParentEducationLevel      string   `json:"Parent_Education_Level" validate:"required"`
		FamilyIncomeLevel         string   `json:"Family_Income_Level" validate:"required"`
		Grade                     string   `json:"Grade" validate:"required"`
	}
)

func value[T int | float64](p *T) float64 {
	if p == nil {
		return 0
	}
	return float64(*p)
}

// Features renames the ingestion fields to the training columns. Absent numbers read as 0;
// validate the input first.
func (in Input) Features() Features {
	return Features{
		Age:                       value(in.Age),
		Attendance:                value(in.Attendance),
		MidtermScore:              value(in.MidtermScore),
		FinalScore:                value(in.FinalScore),
		AssignmentsAvg:            value(in.AssignmentsAvg),
		QuizzesAvg:                value(in.QuizzesAvg),
		ParticipationScore:        value(in.ParticipationScore),
		ProjectsScore:             value(in.ProjectsScore),
		StudyHoursPerWeek:         value(in.StudyHoursPerWeek),
		StressLevel:               value(in.StressLevel),
		SleepHoursPerNight:        value(in.SleepHoursPerNight),
		Gender:                    in.Gender,
		Department:                in.Department,
		ExtracurricularActivities: in.ExtracurricularActivities,
		InternetAccessAtHome:      in.InternetAccessAtHome,
		ParentEducationLevel:      in.ParentEducationLevel,
		FamilyIncomeLevel:         in.FamilyIncomeLevel,
		Grade:                     in.Grade,
	}
}

// Number returns the numeric feature called name.
func (f Features) Number(name string) (float64, bool) {
	switch name {
	case "Age":
		return f.Age, true
	case "Attendance (%)":
		return f.Attendance, true
	case "Midterm_Score":
		return f.MidtermScore, true
	case "Final_Score":
		return f.FinalScore, true
	case "Assignments_Avg":
		return f.AssignmentsAvg, true
	case "Quizzes_Avg":
		return f.QuizzesAvg, true
	case "Participation_Score":
		return f.ParticipationScore, true
	case "Projects_Score":
		return f.ProjectsScore, true
	case "Study_Hours_per_Week":
		return f.StudyHoursPerWeek, true
	case "Stress_Level (1-10)":
		return f.StressLevel, true
	case "Sleep_Hours_per_Night":
		return f.SleepHoursPerNight, true
	}
	return 0, false
}

// Category returns the categorical feature called name.
func (f Features) Category(name string) (string, bool) {
	switch name {
	case "Gender":
		return f.Gender, true
	case "Department":
		return f.Department, true
	case "Extracurricular_Activities":
		return f.ExtracurricularActivities, true
	case "Internet_Access_at_Home":
		return f.InternetAccessAtHome, true
	case "Parent_Education_Level":
		return f.ParentEducationLevel, true
	case "Family_Income_Level":
		return f.FamilyIncomeLevel, true
	case "Grade":
		return f.Grade, true
	}
	return "", false
}
