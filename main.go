package main

import "github.com/shintoio/ama/cmd"

func main() {
	cmd.Execute()
}
