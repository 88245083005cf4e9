package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/psapy/dv-backend/internal/container"
	"github.com/psapy/dv-backend/internal/notification"
	presentation "github.com/psapy/dv-backend/internal/presentation/http"
	"github.com/psapy/dv-backend/pkg/logger"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		fmt.Println("Error loading .env file")
	}
}

func main() {
	logger.InitGlobalLogger()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zapLogger.Sync()

	c, err := container.NewContainer()
	if err != nil {
		fmt.Println("main NewContainer error", err)
		panic(err)
	}

	if err := c.InitWithdrawalServices(zapLogger); err != nil {
		fmt.Println("main InitWithdrawalServices error", err)
		panic(err)
	}

	notification.SendTelMsg("Payout Manage Server Start")

	if err := c.WithdrawScheduler.Start(); err != nil {
		fmt.Println("main WithdrawScheduler Start error", err)
		panic(err)
	}
	defer c.WithdrawScheduler.Stop()

	server := presentation.NewServer(c)
	if err := server.Start(); err != nil {
		panic(err)
	}
}
