package config

// Config contains all application settings
type Config struct {
	BindPort      int    `mapstructure:"PORT" yaml:"port"`
	BindHost      string `mapstructure:"HOST" yaml:"host"`
	DatabaseURL   string `mapstructure:"DATABASE_URL" yaml:"database_url"`
	NATSServerURL string `mapstructure:"NATS_URL" yaml:"nats_url"`

	// Operator access
	JWTSecret         string `mapstructure:"JWT_SECRET" yaml:"jwt_secret"`
	AdminEmail        string `mapstructure:"ADMIN_EMAIL" yaml:"admin_email"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH" yaml:"admin_password_hash"`

	// SMS provider
	SMSAPIKey   string `mapstructure:"SMS_API_KEY" yaml:"sms_api_key"`
	SMSBaseURL  string `mapstructure:"SMS_BASE_URL" yaml:"sms_base_url"`
	SMSSenderID string `mapstructure:"SMS_SENDER_ID" yaml:"sms_sender_id"`

	// Escalation
	AlertFallbackNumber string `mapstructure:"ALERT_FALLBACK_NUMBER" yaml:"alert_fallback_number"`

	// Realtime engine
	SessionTimeout           int  `mapstructure:"SESSION_TIMEOUT" yaml:"session_timeout"`
	OfflineOverridesCritical bool `mapstructure:"OFFLINE_OVERRIDES_CRITICAL" yaml:"offline_overrides_critical"`

	// Version
	BuildVersion string `yaml:"-"`
	BuildHash    string `yaml:"-"`
	BuildTime    string `yaml:"-"`
}
