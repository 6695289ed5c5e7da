// README: Entry point; hands off to the cobra command tree.
package main

import "routecost/cmd/routecost/command"

func main() {
	command.Execute()
}
