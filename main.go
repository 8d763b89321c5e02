package main

import "net/http"

func main() {
	config := MustLoadConfig()
	registry := NewRegistry()
	resume := NewResumeJWT(config.JwtSecret)
	handler := NewHTTPServer(registry, resume)
	LogStartedServer(config.Port)
	http.ListenAndServe(":"+config.Port, handler)
}
