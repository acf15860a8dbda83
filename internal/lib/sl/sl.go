package sl

import "log/slog"

// Module tags log records with the component that produced them.
func Module(name string) slog.Attr {
	return slog.String("module", name)
}

// Err attaches an error message as a standard attribute.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Secret logs a value masked down to its first and last two characters so
// keys and tokens never land in plain text.
func Secret(key, value string) slog.Attr {
	return slog.String(key, mask(value))
}

func mask(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return value[:2] + "****" + value[len(value)-2:]
}
