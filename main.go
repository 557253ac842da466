package main

import (
	"encoding/json"
	"log"
	"net/http"

	"dangle/config"
	"dangle/network"
	"dangle/room"
)

func main() {
	config.InitConfig()
	port := config.GetEnvOr("PORT", "8080")

	manager := room.NewManager()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", network.Handler(manager))
	mux.HandleFunc("/rooms", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(manager.ListRooms())
	})
	mux.HandleFunc("/create", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(room.RoomInfo{Code: manager.CreateRoom()})
	})

	log.Printf("listening on :%s (ws endpoint: /ws)", port)
	log.Fatal(http.ListenAndServe(":"+port, mux))
}
