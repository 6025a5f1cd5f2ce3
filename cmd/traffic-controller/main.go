package main

import "github.com/UrUsualKal/ai-traffic-light-system/cmd/traffic-controller/cmd"

func main() {
	cmd.Execute()
}
