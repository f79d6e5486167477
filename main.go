package main

import "github.com/yeremiapane/reservation-app/cmd"

func main() {
	cmd.Execute()
}
