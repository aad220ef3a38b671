package main

import (
	"log"
	"net/http"

	"fishserver/pkg/config"
	"fishserver/pkg/httpapi"
	"fishserver/pkg/ocean"
	"fishserver/pkg/racing"
)

func main() {
	cfg := config.FromEnv()

	oceanSim := ocean.NewSimulator()
	oceanSim.Run()

	racingWorld := racing.NewWorld()

	api := httpapi.New(oceanSim, racingWorld)

	log.Printf("fishserver listening on %s", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, api.Router()); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}
