package exec

// Host identifies the target of a command; bash://localhost/ runs locally,
// any other host is reached over ssh
type Host struct {
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	Credentials string `json:"credentials,omitempty" yaml:"credentials,omitempty"`
}
