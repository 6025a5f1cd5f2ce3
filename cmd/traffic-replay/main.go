package main

import "github.com/UrUsualKal/ai-traffic-light-system/cmd/traffic-replay/cmd"

func main() {
	cmd.Execute()
}
