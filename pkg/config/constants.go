package config

// EnvPrefix is the prefix shared by every environment variable the service reads.
const EnvPrefix = "plantops"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "PLANTOPS_DB_DSN"
	EnvDBHost = "PLANTOPS_DB_HOST"
	EnvDBUser = "PLANTOPS_DB_USER"
	EnvDBName = "PLANTOPS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
