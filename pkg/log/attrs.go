package log

import "log/slog"

func FlowID[T ~string](id T) slog.Attr {
	return slog.String("flow_id", string(id))
}

func VersionID[T ~string](id T) slog.Attr {
	return slog.String("version_id", string(id))
}

func StepName[T ~string](name T) slog.Attr {
	return slog.String("step_name", string(name))
}

func RunID[T ~string](id T) slog.Attr {
	return slog.String("run_id", string(id))
}

func Operation[T ~string](typ T) slog.Attr {
	return slog.String("operation", string(typ))
}

func Status[T ~string](status T) slog.Attr {
	return slog.String("status", string(status))
}

func Key[T ~string](key T) slog.Attr {
	return slog.String("key", string(key))
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func ErrorString(msg string) slog.Attr {
	return slog.String("error", msg)
}
