package x11vnc

import "strconv"

// ProgramName is the synthetic argv[0] used for every generated argument
// vector and for the default vector when a caller starts with no arguments.
const ProgramName = "x11vnc"

// Args translates the configuration into the wrapped server's command-line
// form. The emission order is fixed: the engine's own parser is
// order-sensitive for repeated flags, so the sequence below must stay
// stable. The translation is one-way; there is no args-to-config inverse.
func (c *Config) Args() []string {
	args := make([]string, 0, 32)
	args = append(args, ProgramName)

	if c.Display != "" {
		args = append(args, "-display", c.Display)
	}
	if c.AuthFile != "" {
		args = append(args, "-auth", c.AuthFile)
	}
	if c.Port > 0 && c.Port != DefaultPort {
		args = append(args, "-rfbport", strconv.Itoa(c.Port))
	}
	if c.LocalhostOnly {
		args = append(args, "-localhost")
	}
	if c.IPv6 {
		args = append(args, "-6")
	}

	// Exactly one of password, password file, or no-password.
	switch {
	case c.Password != "":
		args = append(args, "-passwd", c.Password)
	case c.PasswordFile != "":
		args = append(args, "-passwdfile", c.PasswordFile)
	default:
		args = append(args, "-nopw")
	}

	if c.ViewOnly {
		args = append(args, "-viewonly")
	}
	if c.AllowHosts != "" {
		args = append(args, "-allow", c.AllowHosts)
	}

	if c.Shared {
		args = append(args, "-shared")
	} else {
		args = append(args, "-noshared")
	}
	if c.Forever {
		args = append(args, "-forever")
	}
	if c.Once {
		args = append(args, "-once")
	}

	if c.PollIntervalMS != DefaultPollIntervalMS {
		args = append(args, "-wait", strconv.Itoa(c.PollIntervalMS))
	}
	if !c.UseSHM {
		args = append(args, "-noshm")
	}
	if !c.UseXDamage {
		args = append(args, "-noxdamage")
	}
	if c.Wireframe {
		args = append(args, "-wireframe")
	}
	if !c.ShowCursor {
		args = append(args, "-nocursor")
	}
	if !c.AcceptBell {
		args = append(args, "-nobell")
	}
	if c.Geometry != "" {
		args = append(args, "-geometry", c.Geometry)
	}
	if c.Clip != "" {
		args = append(args, "-clip", c.Clip)
	}

	args = append(args, "-q")
	return args
}
