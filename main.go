package main

import "github.com/LeiShi1313/readrepeat/cmd"

// @title           ReadRepeat API
// @version         0.1.0
// @description     Shadow-reading lessons, audio alignment and the worker job queue
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:3000
// @BasePath        /
// @schemes         http https
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Worker token minted with readrepeat token, sent as "Bearer <token>"
func main() {
	cmd.Execute()
}
