package main

import "github.com/jasherai/mysqltuner/cmd"

func main() {
	cmd.Execute()
}
