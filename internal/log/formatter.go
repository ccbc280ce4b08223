package log

import (
	"fmt"
	"path"
	"runtime"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// formatter renders entries from a pattern with the placeholders %time,
// %level, %field, %msg, %caller, %func, %goroutine and %n (newline).
type formatter struct {
	pattern string
	time    string
}

func (f *formatter) Format(entry *logrus.Entry) ([]byte, error) {
	output := f.pattern
	output = strings.Replace(output, "%time", entry.Time.Format(f.time), 1)
	output = strings.Replace(output, "%level", strings.ToUpper(entry.Level.String()), 1)
	output = strings.Replace(output, "%field", buildFields(entry), 1)
	if strings.Contains(output, "%caller") {
		output = strings.Replace(output, "%caller", getCaller(entry), 1)
	}
	if strings.Contains(output, "%func") {
		output = strings.Replace(output, "%func", getFunc(entry), 1)
	}
	if strings.Contains(output, "%goroutine") {
		output = strings.Replace(output, "%goroutine", getGoroutineID(), 1)
	}
	// %msg last so placeholders inside the message are left alone
	output = strings.Replace(output, "%msg", entry.Message, 1)
	output = strings.ReplaceAll(output, "%n", "\n")
	return []byte(output), nil
}

// getCaller returns package/file.go:line of the logging call.
func getCaller(entry *logrus.Entry) string {
	if entry.HasCaller() {
		return fmt.Sprintf("%s/%s:%d", funcPackage(entry.Caller.Function), path.Base(entry.Caller.File), entry.Caller.Line)
	}
	_, file, line, ok := runtime.Caller(8)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("unknown/%s:%d", path.Base(file), line)
}

// getFunc returns the bare function or method name of the logging call.
func getFunc(entry *logrus.Entry) string {
	if entry.HasCaller() {
		return shortFunc(entry.Caller.Function)
	}
	pc, _, _, ok := runtime.Caller(8)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	return shortFunc(fn.Name())
}

func shortFunc(name string) string {
	if i := strings.LastIndex(name, "."); i != -1 && i+1 < len(name) {
		return name[i+1:]
	}
	return name
}

func funcPackage(name string) string {
	pkg := path.Base(name)
	if i := strings.Index(pkg, "."); i != -1 {
		return pkg[:i]
	}
	return ""
}

// getGoroutineID parses the id from the runtime.Stack header.
func getGoroutineID() string {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	idField := strings.Fields(strings.TrimPrefix(string(buf[:n]), "goroutine "))
	if len(idField) > 0 {
		return idField[0]
	}
	return "unknown"
}

// buildFields renders entry data as key=value pairs sorted by key.
func buildFields(entry *logrus.Entry) string {
	if len(entry.Data) == 0 {
		return ""
	}
	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fields := make([]string, 0, len(keys))
	for _, key := range keys {
		val := entry.Data[key]
		if err, ok := val.(error); ok {
			val = err.Error()
		}
		fields = append(fields, fmt.Sprintf("%s=%v", key, val))
	}
	return strings.Join(fields, ",")
}
