package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Load builds a Config by applying defaults, then overlaying values from an
// optional devup.yaml in the working directory, and finally from DEVUP_*
// environment variables. Environment variables win.
func Load() (*Config, error) {
	v := viper.New()

	defaults := &Config{}
	defaults.LoadDefaults()
	setDefaults(v, defaults)

	v.SetConfigName("devup")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("DEVUP")
	v.AutomaticEnv()
	bindEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("db.name", d.DB.Name)
	v.SetDefault("db.user", d.DB.User)
	v.SetDefault("db.password", d.DB.Password)
	v.SetDefault("db.host", d.DB.Host)
	v.SetDefault("db.port", d.DB.Port)
	v.SetDefault("db.admin_user", d.DB.AdminUser)
	v.SetDefault("db.admin_password", d.DB.AdminPassword)
	v.SetDefault("superuser.username", "")
	v.SetDefault("superuser.password", "")
	v.SetDefault("superuser.email", "")
	v.SetDefault("project.dir", d.Project.Dir)
	v.SetDefault("project.venv_dir", d.Project.VenvDir)
	v.SetDefault("project.requirements", d.Project.Requirements)
	v.SetDefault("project.manage_script", d.Project.ManageScript)
	v.SetDefault("project.migrations_dir", d.Project.MigrationsDir)
	v.SetDefault("project.users_table", d.Project.UsersTable)
	v.SetDefault("serve_addr", d.ServeAddr)
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("db.name", "DEVUP_DB_NAME")
	_ = v.BindEnv("db.user", "DEVUP_DB_USER")
	_ = v.BindEnv("db.password", "DEVUP_DB_PASSWORD")
	_ = v.BindEnv("db.host", "DEVUP_DB_HOST")
	_ = v.BindEnv("db.port", "DEVUP_DB_PORT")
	_ = v.BindEnv("db.admin_user", "DEVUP_DB_ADMIN_USER")
	_ = v.BindEnv("db.admin_password", "DEVUP_DB_ADMIN_PASSWORD")
	_ = v.BindEnv("superuser.username", "DEVUP_SUPERUSER_USERNAME")
	_ = v.BindEnv("superuser.password", "DEVUP_SUPERUSER_PASSWORD")
	_ = v.BindEnv("superuser.email", "DEVUP_SUPERUSER_EMAIL")
	_ = v.BindEnv("project.dir", "DEVUP_PROJECT_DIR")
	_ = v.BindEnv("project.venv_dir", "DEVUP_VENV_DIR")
	_ = v.BindEnv("project.requirements", "DEVUP_REQUIREMENTS")
	_ = v.BindEnv("project.manage_script", "DEVUP_MANAGE_SCRIPT")
	_ = v.BindEnv("project.migrations_dir", "DEVUP_MIGRATIONS_DIR")
	_ = v.BindEnv("project.users_table", "DEVUP_USERS_TABLE")
	_ = v.BindEnv("serve_addr", "DEVUP_SERVE_ADDR")
}
