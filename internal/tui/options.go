package tui

// Logger is the subset of the runtime logger the model writes to.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// UIConfig holds presentation settings.
type UIConfig struct {
	ModalWidthPercent  int
	ModalHeightPercent int
	MarkdownPreview    bool
}

type Option func(*Model)

func DefaultUIConfig() UIConfig {
	return UIConfig{
		ModalWidthPercent:  40,
		ModalHeightPercent: 40,
		MarkdownPreview:    true,
	}
}

func WithUIConfig(cfg UIConfig) Option {
	return func(m *Model) {
		if cfg.ModalWidthPercent > 0 && cfg.ModalWidthPercent <= 100 {
			m.ui.ModalWidthPercent = cfg.ModalWidthPercent
		}
		if cfg.ModalHeightPercent > 0 && cfg.ModalHeightPercent <= 100 {
			m.ui.ModalHeightPercent = cfg.ModalHeightPercent
		}
		m.ui.MarkdownPreview = cfg.MarkdownPreview
	}
}

func WithLogger(logger Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
