package logger

import (
	"encoding/json"
	"log"
	"os"
)

func Init() {
	log.SetOutput(os.Stdout)
	log.SetFlags(0)
	log.Printf(`{"level":"INFO","msg":"logger initialized"}`)
}

func write(level string, msg string, fields map[string]any) {
	if len(fields) == 0 {
		log.Printf(`{"level":"%s","msg":"%s"}`, level, msg)
		return
	}

	data, err := json.Marshal(fields)
	if err != nil {
		data = []byte(`{}`)
	}

	log.Printf(`{"level":"%s","msg":"%s","fields":%s}`, level, msg, data)
}

func Info(msg string, fields map[string]any) {
	write("INFO", msg, fields)
}

func Warn(msg string, fields map[string]any) {
	write("WARN", msg, fields)
}

func Error(msg string, fields map[string]any) {
	write("ERROR", msg, fields)
}

func Fatal(msg string, fields map[string]any) {
	write("FATAL", msg, fields)
	os.Exit(1)
}
