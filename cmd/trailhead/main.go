package main

import (
	"github.com/CaliberConsultingLLC/LEP-2-sub001/cmd/handlers"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
