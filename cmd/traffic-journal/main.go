package main

import "github.com/UrUsualKal/ai-traffic-light-system/cmd/traffic-journal/cmd"

func main() {
	cmd.Execute()
}
