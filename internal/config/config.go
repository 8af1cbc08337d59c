package config

import "time"

// Config is the root configuration.
type Config struct {
	Portal PortalConfig `yaml:"portal"`
	HTTP   HTTPConfig   `yaml:"http"`
	Log    LogConfig    `yaml:"log"`
}

// PortalConfig holds the district service location and the student's credentials.
type PortalConfig struct {
	DistrictURL string `yaml:"district_url" env:"SVUE_DISTRICT_URL" env-required:"true"`
	Username    string `yaml:"username"     env:"SVUE_USERNAME"     env-required:"true"`
	Password    string `yaml:"password"     env:"SVUE_PASSWORD"     env-required:"true"`
	Endpoint    string `yaml:"endpoint"     env:"SVUE_ENDPOINT"     env-default:"/Service/PXPCommunication.asmx/ProcessWebServiceRequest"`

	// SkipCredentialCheck turns off the gradebook request made when the
	// client is created.
	SkipCredentialCheck bool `yaml:"skip_credential_check" env:"SVUE_SKIP_CREDENTIAL_CHECK"`
}

// HTTPConfig holds request settings.
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout"     env:"HTTP_TIMEOUT"     env-default:"10s"`
	RetryCount int           `yaml:"retry_count" env:"HTTP_RETRY_COUNT" env-default:"1"`
	RetryWait  time.Duration `yaml:"retry_wait"  env:"HTTP_RETRY_WAIT"  env-default:"500ms"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
