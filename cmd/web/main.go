package main

import "auction_backend/internal/app"

func main() {
	app.Run()
}
