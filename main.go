package main

import "camera-wall-go/cmd"

func main() {
	cmd.Execute()
}
