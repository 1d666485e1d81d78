package main

import "github.com/jsphweid/evomelody/cmd"

func main() {
	cmd.Execute()
}
