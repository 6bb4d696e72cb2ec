package catalogservice

// Logger интерфейс логирования для клиента
type Logger interface {
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}
