package x11vnc

// Defaults applied by DefaultConfig. Port and poll interval also gate
// argument emission: values equal to the default produce no flag.
const (
	DefaultPort           = 5900
	DefaultPollIntervalMS = 30
)

// Config is the structured form of the wrapped server's invocation options.
// All fields are plain values, so copying a Config copies every string it
// holds; nothing aliases caller memory.
type Config struct {
	// Display settings
	Display  string `yaml:"display,omitempty"`   // X11 display (e.g. ":0")
	AuthFile string `yaml:"auth_file,omitempty"` // X authority file path

	// Network settings
	Port          int  `yaml:"port,omitempty"` // VNC port (0 for auto, default 5900)
	LocalhostOnly bool `yaml:"localhost_only,omitempty"`
	IPv6          bool `yaml:"ipv6,omitempty"`

	// Security settings
	Password     string `yaml:"password,omitempty"`
	PasswordFile string `yaml:"password_file,omitempty"`
	ViewOnly     bool   `yaml:"view_only,omitempty"`
	AllowHosts   string `yaml:"allow_hosts,omitempty"` // comma-separated allowed IPs

	// Behavior settings
	Shared  bool `yaml:"shared,omitempty"`  // allow multiple clients
	Forever bool `yaml:"forever,omitempty"` // keep running after last client
	Once    bool `yaml:"once,omitempty"`    // exit after first client disconnects

	// Performance settings
	PollIntervalMS int  `yaml:"poll_interval_ms,omitempty"`
	UseSHM         bool `yaml:"use_shm"`
	UseXDamage     bool `yaml:"use_xdamage"`
	Wireframe      bool `yaml:"wireframe,omitempty"`

	// Feature settings
	ShowCursor      bool   `yaml:"show_cursor"`
	AcceptBell      bool   `yaml:"accept_bell"`
	AcceptClipboard bool   `yaml:"accept_clipboard"`
	Geometry        string `yaml:"geometry,omitempty"` // force screen geometry (WxH)
	Clip            string `yaml:"clip,omitempty"`     // clip region (WxH+X+Y)
}

// DefaultConfig returns the canonical defaults for a fresh configuration.
func DefaultConfig() Config {
	return Config{
		Port:            DefaultPort,
		PollIntervalMS:  DefaultPollIntervalMS,
		UseSHM:          true,
		UseXDamage:      true,
		ShowCursor:      true,
		AcceptBell:      true,
		AcceptClipboard: true,
	}
}

// Clone returns an independent copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

// RestartRequired reports whether switching from old to new cannot be applied
// to a running instance. Display, port, localhost-only and IPv6 form the
// exhaustive restart-triggering set; every other field is hot-reloadable.
func RestartRequired(old, new *Config) bool {
	if old == nil || new == nil {
		return old != new
	}
	return old.Display != new.Display ||
		old.Port != new.Port ||
		old.LocalhostOnly != new.LocalhostOnly ||
		old.IPv6 != new.IPv6
}
