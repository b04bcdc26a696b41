package devenv

// PortalTestConfig is read from `<dev_state>/cams_config.json5` by tests that talk
// to the real portal.
type PortalTestConfig struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
	// Term is optional, the latest term is used when empty.
	Term string `json:"term"`
}
