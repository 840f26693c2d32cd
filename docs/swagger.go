package docs

import "github.com/swaggo/swag"

// @title           Taskboard API
// @version         1.0
// @description     API for tracking tasks, sprints, assignees and syncing CSV snapshots between devices
// @termsOfService  http://swagger.io/terms/

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token

// @tag.name Users
// @tag.description Registration and login

// @tag.name Tasks
// @tag.description Task management operations

// @tag.name Sprints
// @tag.description Sprint lifecycle operations

// @tag.name Sync
// @tag.description Sync room and document relay operations

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Taskboard API",
	Description:      "API for tracking tasks, sprints, assignees and syncing CSV snapshots between devices",
	InfoInstanceName: "swagger",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
