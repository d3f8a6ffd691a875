package config

import (
	"errors"

	"github.com/spf13/viper"
)

// Defaults matching the engine's own conventions.
const (
	// DefaultPort is PostgreSQL's well-known port. Callers passing port 0
	// get this.
	DefaultPort = 5432
	// DefaultUsername is the conventional superuser.
	DefaultUsername = "postgres"
	// DefaultDatabase is the maintenance database every cluster has.
	DefaultDatabase = "postgres"
	// DefaultVersion of the engine binaries materialized on first start.
	DefaultVersion = "16.4.0"
)

// Configuration errors
var (
	ErrInvalidPort     = errors.New("invalid engine port")
	ErrMissingUsername = errors.New("engine username is required")
	ErrMissingDatabase = errors.New("maintenance database name is required")
	ErrMissingVersion  = errors.New("engine version is required")
)

// setDefaults registers all default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "")    // empty means engine-managed temp dir
	v.SetDefault("runtime_dir", "") // empty means engine-managed temp dir
	v.SetDefault("port", DefaultPort)
	v.SetDefault("username", DefaultUsername)
	v.SetDefault("password", "") // empty means trust access, no URI segment
	v.SetDefault("database", DefaultDatabase)
	v.SetDefault("version", DefaultVersion)
	v.SetDefault("binaries_path", "") // empty means engine default cache
}
