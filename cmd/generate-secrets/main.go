package main

import (
	"fmt"
	"log"

	"github.com/tsangpocruise/booking-backend/internal/utils"
)

func main() {
	fmt.Println("===========================================")
	fmt.Println("Secret Generator for Cruise Booking")
	fmt.Println("===========================================")
	fmt.Println()

	jwtSecret, receiptSecret, err := utils.GenerateSigningSecrets()
	if err != nil {
		log.Fatalf("Failed to generate secrets: %v", err)
	}

	fmt.Println("Add these to your .env file:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", jwtSecret)
	fmt.Printf("RECEIPT_SECRET=%s\n", receiptSecret)
	fmt.Println()
	fmt.Println("Keep these secrets out of version control.")
	fmt.Println("===========================================")
}
