// cmd/main.go
package main

import (
	"github.com/SOUROVSARKERTEC12/file-auth-management/app"
	_ "github.com/SOUROVSARKERTEC12/file-auth-management/docs"
)

// @title           File Auth Management API
// @version         1.0
// @description     Multi-tenant account backend with registration, dual-token sessions and file management.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
