// Command libris runs the Libris API server, its database migrations and
// the terminal client.
package main

import "github.com/pkordes/libris/cmd/libris/commands"

func main() {
	commands.Execute()
}
