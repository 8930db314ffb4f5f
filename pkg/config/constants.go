package config

const (
	EnvPrefix = "foodgen"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv = "FOODGEN_APP_ENV"
	EnvDBDSN  = "FOODGEN_DB_DSN"
	EnvDBHost = "PG_HOST"
	EnvDBUser = "PG_USER"
	EnvDBName = "PG_DB"
)
