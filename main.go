package main

import "RiderBross/cmd"

func main() {
	cmd.Execute()
}
