package main

import "lovetrack-backend/cmd"

func main() {
	cmd.Run()
}
