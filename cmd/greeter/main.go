package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/signal"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/nando-os/ghost-rpc/eth"
	"github.com/nando-os/ghost-rpc/internal/contracts"
	"github.com/nando-os/ghost-rpc/pkg/artifact"
	"github.com/nando-os/ghost-rpc/pkg/config"
)

var logger = logrus.New()

func main() {
	app := cli.NewApp()
	app.Name = "greeter"
	app.Usage = "deploy and drive a Greeter contract over JSON-RPC"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file with ETH_* / OPERATOR_PRIVATE_KEY settings"},
		cli.StringFlag{Name: "network", Usage: "network preset: mainnet, testnet, previewnet, local or a name from ETH_NETWORKS_FILE"},
		cli.StringFlag{Name: "log-level", Value: "info", Usage: "logrus level"},
	}
	app.Before = setup
	app.Commands = []cli.Command{
		{
			Name:   "balance",
			Usage:  "print the operator balance",
			Action: balance,
		},
		{
			Name:      "deploy",
			Usage:     "deploy the Greeter contract, or the contract in --artifact",
			ArgsUsage: "[constructor args for --artifact]",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "greeting", Value: "initial_msg", Usage: "initial greeting"},
				cli.StringFlag{Name: "artifact", Usage: "Hardhat or Foundry artifact JSON"},
			},
			Action: deploy,
		},
		{
			Name:   "greet",
			Usage:  "call greet() on a deployed Greeter",
			Flags:  []cli.Flag{cli.StringFlag{Name: "address", Usage: "Greeter address"}},
			Action: greet,
		},
		{
			Name:      "set-greeting",
			Usage:     "send setGreeting(greeting) and wait for it to be mined",
			ArgsUsage: "<greeting>",
			Flags:     []cli.Flag{cli.StringFlag{Name: "address", Usage: "Greeter address"}},
			Action:    setGreeting,
		},
		{
			Name:   "demo",
			Usage:  "deploy, greet, setGreeting, greet",
			Action: demo,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.WithError(err).Fatal("greeter failed")
	}
}

func setup(c *cli.Context) error {
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	if err := godotenv.Load(c.String("env-file")); err != nil {
		logger.WithError(err).Warn("Error loading .env file")
	}
	if network := c.String("network"); network != "" {
		return os.Setenv("ETH_NETWORK", network)
	}
	return nil
}

type session struct {
	client    *eth.Client
	transport *eth.RPCTransport
	greeter   *eth.ContractInterface
}

func (s *session) Close() {
	s.transport.Close()
}

func connect(ctx context.Context) (*session, error) {
	cfg, err := config.NewConfiguration()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	network := cfg.Network()
	logger.WithFields(logrus.Fields{
		"network":  network.Name,
		"url":      network.RPCURL,
		"chain_id": network.ChainID,
	}).Info("Connecting to Ethereum RPC")

	transport, err := eth.Dial(ctx, cfg.RPCURL())
	if err != nil {
		return nil, err
	}
	signer, err := eth.NewSigner(cfg.Accounts()[0].PrivateKey)
	if err != nil {
		transport.Close()
		return nil, err
	}
	client, err := eth.NewClient(ctx, transport, signer, cfg, eth.WithLogger(logger))
	if err != nil {
		transport.Close()
		return nil, err
	}
	fmt.Printf("Using address: %s\n", client.Address().Hex())
	return &session{
		client:    client,
		transport: transport,
		greeter:   eth.MustParseContractInterface(contracts.GreeterABI),
	}, nil
}

func run(action func(ctx context.Context, s *session, c *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		s, err := connect(ctx)
		if err != nil {
			return err
		}
		defer s.Close()
		return action(ctx, s, c)
	}
}

var (
	balance     = run(balanceAction)
	deploy      = run(deployAction)
	greet       = run(greetAction)
	setGreeting = run(setGreetingAction)
	demo        = run(demoAction)
)

func balanceAction(ctx context.Context, s *session, _ *cli.Context) error {
	bal, err := s.client.Balance(ctx, s.client.Address())
	if err != nil {
		return err
	}
	fmt.Printf("Account balance: %s wei (%s)\n", bal, formatEther(bal))
	return nil
}

func deployAction(ctx context.Context, s *session, c *cli.Context) error {
	if path := c.String("artifact"); path != "" {
		a, err := artifact.Load(path)
		if err != nil {
			return err
		}
		args := make([]any, len(c.Args()))
		for i, arg := range c.Args() {
			args[i] = arg
		}
		contract, _, err := s.client.Deploy(ctx, a.Bytecode, a.Interface, args...)
		if err != nil {
			return err
		}
		fmt.Printf("Contract %s deployed at address: %s\n", a.Name, contract.Address().Hex())
		return nil
	}

	contract, err := deployGreeter(ctx, s, c.String("greeting"))
	if err != nil {
		return err
	}
	fmt.Println("Contract deployed at address:", contract.Address().Hex())
	return nil
}

func greetAction(ctx context.Context, s *session, c *cli.Context) error {
	contract, err := attach(s, c)
	if err != nil {
		return err
	}
	result, err := callGreet(ctx, contract)
	if err != nil {
		return err
	}
	fmt.Printf("Greet method returned: %s\n", result)
	return nil
}

func setGreetingAction(ctx context.Context, s *session, c *cli.Context) error {
	contract, err := attach(s, c)
	if err != nil {
		return err
	}
	if c.NArg() != 1 {
		return errors.New("expected exactly one greeting argument")
	}
	return sendGreeting(ctx, contract, c.Args().First())
}

func demoAction(ctx context.Context, s *session, _ *cli.Context) error {
	if err := balanceAction(ctx, s, nil); err != nil {
		return err
	}

	contract, err := deployGreeter(ctx, s, "initial_msg")
	if err != nil {
		return err
	}
	fmt.Println("Contract deployed at address:", contract.Address().Hex())

	result, err := callGreet(ctx, contract)
	if err != nil {
		return err
	}
	fmt.Printf("Greet method returned: %s\n", result)

	if err := sendGreeting(ctx, contract, "updated_msg"); err != nil {
		return err
	}

	result, err = callGreet(ctx, contract)
	if err != nil {
		return err
	}
	fmt.Printf("Greet method returned: %s\n", result)
	return nil
}

func deployGreeter(ctx context.Context, s *session, greeting string) (*eth.Contract, error) {
	contract, receipt, err := s.client.Deploy(ctx, contracts.GreeterBytecode(), s.greeter, greeting)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy contract: %w", err)
	}
	fmt.Printf("Deployment transaction %s mined in block %s\n", receipt.TxHash.Hex(), receipt.BlockNumber)
	return contract, nil
}

func callGreet(ctx context.Context, contract *eth.Contract) (string, error) {
	out, err := contract.Call(ctx, "greet")
	if err != nil {
		return "", fmt.Errorf("failed to call Greet method: %w", err)
	}
	greeting, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("greet returned %T, expected string", out[0])
	}
	return greeting, nil
}

func sendGreeting(ctx context.Context, contract *eth.Contract, greeting string) error {
	receipt, err := contract.SendAndWait(ctx, "setGreeting", greeting)
	if err != nil {
		return fmt.Errorf("failed to call SetGreeting method: %w", err)
	}
	fmt.Printf("Called SetGreeting method with input '%s', transaction %s mined\n", greeting, receipt.TxHash.Hex())
	return nil
}

func attach(s *session, c *cli.Context) (*eth.Contract, error) {
	addr := c.String("address")
	if !common.IsHexAddress(addr) {
		return nil, fmt.Errorf("invalid contract address %q", addr)
	}
	return s.client.Attach(common.HexToAddress(addr), s.greeter), nil
}

func formatEther(wei *big.Int) string {
	ether := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18))
	return ether.Text('f', 6) + " ETH"
}
