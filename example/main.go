package main

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"os"

	"github.com/joho/godotenv"

	"github.com/nando-os/ghost-rpc/eth"
	"github.com/nando-os/ghost-rpc/pkg/config"
)

func setup() {
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Printf("Warning: error loading .env file: %+v\n", err)
		return
	}

	// To route requests through a proxy, set these environment variables:
	// HTTP_PROXY=socks5://127.0.0.1:9050
	// HTTPS_PROXY=socks5://127.0.0.1:9050

	fmt.Printf("Environment check:\n")
	fmt.Printf("  ETH_NETWORK: %s\n", os.Getenv("ETH_NETWORK"))
	fmt.Printf("  ETH_RPC_URL: %s\n", os.Getenv("ETH_RPC_URL"))
	fmt.Printf("  ETH_CHAIN_ID: %s\n", os.Getenv("ETH_CHAIN_ID"))
	fmt.Printf("  ETH_ACCOUNTS: %s\n", os.Getenv("ETH_ACCOUNTS"))
}

func main() {
	// --- Setup ---
	setup()
	ctx := context.Background()

	// --- Load Configuration ---
	fmt.Println("Loading configuration...")
	cfg, err := config.NewConfiguration()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	fmt.Printf("Configuration loaded successfully. Network: %s, chain ID: %d\n", cfg.Network().Name, cfg.ChainID())

	// --- Get Accounts ---
	accounts := cfg.Accounts()
	sender := accounts[0]
	receiver := sender
	if len(accounts) > 1 {
		receiver = accounts[1]
	}
	fmt.Printf("Sender: %s\n", sender.Address.Hex())
	fmt.Printf("Receiver: %s\n", receiver.Address.Hex())

	// --- Create client ---
	transport, err := eth.Dial(ctx, cfg.RPCURL())
	if err != nil {
		log.Fatal("Failed to connect:", err)
	}
	defer transport.Close()

	signer, err := eth.NewSigner(sender.PrivateKey)
	if err != nil {
		log.Fatal("Failed to create signer:", err)
	}
	client, err := eth.NewClient(ctx, transport, signer, cfg)
	if err != nil {
		log.Fatal("Failed to create client:", err)
	}

	// --- Sign Transaction ---
	// Send 0.001 ETH
	value := big.NewInt(1e15)
	to := receiver.Address
	fmt.Println("Signing transaction...")
	signed, err := client.SignTransaction(ctx, eth.UnsignedTransaction{To: &to, Value: value})
	if err != nil {
		log.Fatal("Failed to sign transaction:", err)
	}
	fmt.Printf("Transaction signed successfully. Hash: %s, nonce: %d\n", signed.Hash.Hex(), *signed.Unsigned.Nonce)

	// --- Send Transaction (non-blocking) ---
	hash, err := client.SendRaw(ctx, signed)
	if err != nil {
		log.Fatal("Failed to send transaction:", err)
	}
	fmt.Printf("Transaction sent! Hash: %s\n", hash.Hex())

	// --- Wait for Confirmation ---
	fmt.Println("Waiting for transaction confirmation...")
	receipt, err := client.WaitForReceipt(ctx, hash, 0, 0)
	if err != nil {
		log.Fatal("Transaction failed:", err)
	}

	fmt.Printf("Transaction confirmed!\n")
	fmt.Printf("Block Number: %s\n", receipt.BlockNumber)
	fmt.Printf("Gas Used: %d\n", receipt.GasUsed)
	if receipt.EffectiveGasPrice != nil {
		fee := new(big.Int).Mul(new(big.Int).SetUint64(receipt.GasUsed), receipt.EffectiveGasPrice)
		fmt.Printf("Fee: %s wei\n", fee)
	}

	if receipt.Succeeded() {
		fmt.Println("✅ Transaction successful!")
	} else {
		fmt.Println("❌ Transaction failed!")
	}

	// --- Check Balance ---
	balance, err := client.Balance(ctx, sender.Address)
	if err != nil {
		fmt.Printf("Failed to get balance: %v\n", err)
	} else {
		fmt.Printf("Current balance: %s wei\n", balance.String())
	}
}
