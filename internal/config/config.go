// Package config handles configuration for the bootstrapper: development
// defaults, an optional YAML file, and DEVUP_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
)

// DB holds connection and provisioning settings for the database engine.
//
// Host selects the connection mode: empty means the local engine (socket
// mode, role/database creation through the local superuser), anything else
// means a remote engine reached with the administrative credential pair.
type DB struct {
	Name          string `mapstructure:"name"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	AdminUser     string `mapstructure:"admin_user"`
	AdminPassword string `mapstructure:"admin_password"`
}

// Superuser is the optional environment-supplied privileged account. It is
// seeded only when both Username and Password are set.
type Superuser struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Email    string `mapstructure:"email"`
}

// Project locates the application being provisioned.
type Project struct {
	Dir           string `mapstructure:"dir"`
	VenvDir       string `mapstructure:"venv_dir"`
	Requirements  string `mapstructure:"requirements"`
	ManageScript  string `mapstructure:"manage_script"`
	MigrationsDir string `mapstructure:"migrations_dir"`
	UsersTable    string `mapstructure:"users_table"`
}

// Config holds runtime settings for one bootstrap invocation.
type Config struct {
	DB        DB        `mapstructure:"db"`
	Superuser Superuser `mapstructure:"superuser"`
	Project   Project   `mapstructure:"project"`
	ServeAddr string    `mapstructure:"serve_addr"`
}

// LoadDefaults populates Config with development defaults. These values are
// insecure by design; the tool provisions local development hosts only.
func (c *Config) LoadDefaults() {
	c.DB = DB{
		Name:      "shopercenter",
		User:      "shopercenter",
		Password:  "shopercenter",
		Host:      "",
		Port:      5432,
		AdminUser: "postgres",
	}
	c.Project = Project{
		Dir:          ".",
		VenvDir:      ".venv",
		Requirements: "requirements.txt",
		ManageScript: "manage.py",
		UsersTable:   "users",
	}
	c.ServeAddr = "0.0.0.0:8000"
}

// RemoteMode reports whether the engine is reached over the network rather
// than provisioned on the local host.
func (c *Config) RemoteMode() bool {
	return c.DB.Host != ""
}

// SeedRequested reports whether the optional environment-supplied superuser
// should be created.
func (c *Config) SeedRequested() bool {
	return c.Superuser.Username != "" && c.Superuser.Password != ""
}

// NativeMigrations reports whether the application ships plain SQL
// migrations applied by the bootstrapper itself instead of the framework's
// migration command.
func (c *Config) NativeMigrations() bool {
	return c.Project.MigrationsDir != ""
}

// AppDSN is the application-level connection string for the ensured role and
// database. In socket mode connections go to localhost over TCP; the ensured
// role authenticates by password either way.
func (c *Config) AppDSN() string {
	host := c.DB.Host
	if host == "" {
		host = "localhost"
	}
	return dsn(c.DB.User, c.DB.Password, host, c.DB.Port, c.DB.Name)
}

// AdminDSN is the administrative connection string used in remote mode for
// role and database provisioning. It connects to the maintenance database.
func (c *Config) AdminDSN() string {
	return dsn(c.DB.AdminUser, c.DB.AdminPassword, c.DB.Host, c.DB.Port, "postgres")
}

func dsn(user, password, host string, port int, database string) string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%d", host, port),
		Path:     "/" + database,
		RawQuery: "sslmode=disable",
	}
	if password != "" {
		u.User = url.UserPassword(user, password)
	} else {
		u.User = url.User(user)
	}
	return u.String()
}

// VenvPath resolves the isolated environment directory against the project
// directory unless it is already absolute.
func (c *Config) VenvPath() string {
	return c.projectPath(c.Project.VenvDir)
}

// PythonBin is the interpreter inside the isolated environment.
func (c *Config) PythonBin() string {
	return filepath.Join(c.VenvPath(), "bin", "python")
}

// PipBin is the package installer inside the isolated environment.
func (c *Config) PipBin() string {
	return filepath.Join(c.VenvPath(), "bin", "pip")
}

// ManagePath locates the framework entry script.
func (c *Config) ManagePath() string {
	return c.projectPath(c.Project.ManageScript)
}

// RequirementsPath locates the dependency manifest.
func (c *Config) RequirementsPath() string {
	return c.projectPath(c.Project.Requirements)
}

// MigrationsPath locates the native SQL migration directory. Empty when
// framework migrations are in use.
func (c *Config) MigrationsPath() string {
	if c.Project.MigrationsDir == "" {
		return ""
	}
	return c.projectPath(c.Project.MigrationsDir)
}

func (c *Config) projectPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Project.Dir, p)
}
