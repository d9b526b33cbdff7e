package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		RollbarToken string
		Server       ServerConfig
		Storage      StorageConfig
		Database     DatabaseConfig
		Model        ModelConfig
		Ledger       LedgerConfig
		Cohort       CohortConfig
		Roadmap      RoadmapConfig
	}

	ServerConfig struct {
		Address         string
		DebugAddress    string
		ShutdownTimeout time.Duration
		BodyLimit       string
		CORSOrigins     []string
		DisableReqLogs  bool
	}

	StorageConfig struct {
		Driver  string // file | postgres | memory
		DataDir string
	}

	DatabaseConfig struct {
		Engine     string
		Host       string
		Port       int
		User       string
		Password   string
		Name       string
		DisableTLS bool
	}

	ModelConfig struct {
		Path string
	}

	LedgerConfig struct {
		RiskThreshold float64
	}

	CohortConfig struct {
		RiskThreshold float64
		SummaryColumn string
		TopPercentile float64
	}

	RoadmapConfig struct {
		AttendanceMin float64
		StudyHoursMin float64
		ScoreMin      float64
	}
)

// Storage drivers.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// NewConfig loads the configuration from the environment.
// ENV selects the environment (DEV by default, TEST, QA, PROD) and is also used as the variables prefix,
// e.g. DEV_SERVER_ADDRESS. A config/.env.<env> file is loaded first when it exists.
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			DebugAddress:    v.GetString("server.debugAddress"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			BodyLimit:       v.GetString("server.bodyLimit"),
			CORSOrigins:     v.GetStringSlice("server.corsOrigins"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Storage: StorageConfig{
			Driver:  strings.ToLower(v.GetString("storage.driver")),
			DataDir: projectPath(v.GetString("storage.dataDir")),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("database.engine"),
			Host:       v.GetString("database.host"),
			Port:       v.GetInt("database.port"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			Name:       v.GetString("database.name"),
			DisableTLS: v.GetBool("database.disableTLS"),
		},
		Model: ModelConfig{
			Path: projectPath(v.GetString("model.path")),
		},
		Ledger: LedgerConfig{
			RiskThreshold: v.GetFloat64("ledger.riskThreshold"),
		},
		Cohort: CohortConfig{
			RiskThreshold: v.GetFloat64("cohort.riskThreshold"),
			SummaryColumn: v.GetString("cohort.summaryColumn"),
			TopPercentile: v.GetFloat64("cohort.topPercentile"),
		},
		Roadmap: RoadmapConfig{
			AttendanceMin: v.GetFloat64("roadmap.attendanceMin"),
			StudyHoursMin: v.GetFloat64("roadmap.studyHoursMin"),
			ScoreMin:      v.GetFloat64("roadmap.scoreMin"),
		},
	}
}

// projectPath resolves a relative path against the project root.
func projectPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(Getwd(), p)
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Masomo Insights")
	v.SetDefault("build", "develop")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.bodyLimit", "10M")
	v.SetDefault("server.corsOrigins", []string{"*"})
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("storage.driver", StorageFile)
	v.SetDefault("storage.dataDir", "data")

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "masomo")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "masomo_insights")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("model.path", "model/student_score_model.json")

	v.SetDefault("ledger.riskThreshold", 55.0)

	v.SetDefault("cohort.riskThreshold", 50.0)
	v.SetDefault("cohort.summaryColumn", "Final_Score")
	v.SetDefault("cohort.topPercentile", 0.9)

	v.SetDefault("roadmap.attendanceMin", 75.0)
	v.SetDefault("roadmap.studyHoursMin", 10.0)
	v.SetDefault("roadmap.scoreMin", 50.0)
}
