// Package cli wires Cobra command definitions to the settlement core.
// Flag parsing and presentation live here; every guard, invariant and
// state transition lives in package core — this mirrors the teacher's
// cmd/cli/state_channel.go controller/engine split.
package cli

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"paychannel/core"
)

var (
	envPath string
	engine  *core.Engine
	ledger  core.TokenLedger
)

// initMiddleware loads optional .env configuration, then wires an
// in-process Engine over an in-memory store and a demo token ledger.
// A production deployment replaces NewMemStore/NewSimpleToken with
// whatever backs the real channel map and token contract, matching the
// host's ambient-environment responsibilities (spec §1/§6).
func initMiddleware(cmd *cobra.Command, args []string) {
	if ep, _ := cmd.Flags().GetString("env"); ep != "" {
		envPath = ep
	}
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	self := zeroAddress()
	env := &core.StaticEnvironment{
		Self:  self,
		Block: demoBlockNumber(),
		Clock: demoNow(),
	}
	caller, _ := parseAddress(os.Getenv("PAYCHANNEL_CALLER"))
	env.Caller = caller

	engine = core.NewEngine(core.NewMemStore(), core.NewGateway(self), core.NewMemEventSink(), env)
	ledger = demoLedger
}

//-------------------------------------------------------------------------
// Parsing helpers
//-------------------------------------------------------------------------

func parseAddress(hexStr string) (core.Address, error) {
	var a core.Address
	if hexStr == "" {
		return a, nil
	}
	b, err := hex.DecodeString(trim0x(hexStr))
	if err != nil || len(b) != len(a) {
		return a, errors.New("address must be 20-byte hex")
	}
	copy(a[:], b)
	return a, nil
}

func parseChannelID(hexStr string) (core.ChannelID, error) {
	var id core.ChannelID
	b, err := hex.DecodeString(trim0x(hexStr))
	if err != nil || len(b) != len(id) {
		return id, errors.New("channel id must be 32-byte hex")
	}
	copy(id[:], b)
	return id, nil
}

func parseSignature(hexStr string) (core.Signature, error) {
	var sig core.Signature
	b, err := hex.DecodeString(trim0x(hexStr))
	if err != nil || len(b) != len(sig) {
		return sig, errors.New("signature must be 65-byte hex (r||s||v)")
	}
	copy(sig[:], b)
	return sig, nil
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func zeroAddress() core.Address { return core.Address{} }

//-------------------------------------------------------------------------
// Controller handlers
//-------------------------------------------------------------------------

func openHandler(cmd *cobra.Command, args []string) {
	counterparty, err := parseAddress(mustFlag(cmd, "counterparty"))
	bail(err)
	token, err := parseAddress(mustFlag(cmd, "token"))
	bail(err)
	amount, err := strconv.ParseUint(mustFlag(cmd, "amount"), 10, 64)
	bail(err)
	period, _ := cmd.Flags().GetUint64("period")

	id, err := engine.Open(ledger, token, counterparty, amount, period)
	bail(err)
	fmt.Printf("channel opened: %s\n", id.Hex())
}

func joinHandler(cmd *cobra.Command, args []string) {
	id, err := parseChannelID(mustFlag(cmd, "channel"))
	bail(err)
	amount, err := strconv.ParseUint(mustFlag(cmd, "amount"), 10, 64)
	bail(err)
	bail(engine.Join(ledger, id, amount))
	fmt.Println("counterparty joined")
}

func closeHandler(cmd *cobra.Command, args []string) {
	id, err := parseChannelID(mustFlag(cmd, "channel"))
	bail(err)
	nonce, err := strconv.ParseUint(mustFlag(cmd, "nonce"), 10, 64)
	bail(err)
	balanceA, err := strconv.ParseUint(mustFlag(cmd, "balanceA"), 10, 64)
	bail(err)
	balanceB, err := strconv.ParseUint(mustFlag(cmd, "balanceB"), 10, 64)
	bail(err)
	sigA, err := parseSignature(mustFlag(cmd, "sigA"))
	bail(err)
	sigB, err := parseSignature(mustFlag(cmd, "sigB"))
	bail(err)

	bail(engine.Close(ledger, id, nonce, balanceA, balanceB, sigA, sigB))
	fmt.Println("close accepted")
}

func challengeHandler(cmd *cobra.Command, args []string) {
	id, err := parseChannelID(mustFlag(cmd, "channel"))
	bail(err)
	nonce, err := strconv.ParseUint(mustFlag(cmd, "nonce"), 10, 64)
	bail(err)
	balanceA, err := strconv.ParseUint(mustFlag(cmd, "balanceA"), 10, 64)
	bail(err)
	balanceB, err := strconv.ParseUint(mustFlag(cmd, "balanceB"), 10, 64)
	bail(err)
	sigA, err := parseSignature(mustFlag(cmd, "sigA"))
	bail(err)
	sigB, err := parseSignature(mustFlag(cmd, "sigB"))
	bail(err)

	bail(engine.Challenge(id, nonce, balanceA, balanceB, sigA, sigB))
	fmt.Println("challenge accepted")
}

func redeemHandler(cmd *cobra.Command, args []string) {
	id, err := parseChannelID(mustFlag(cmd, "channel"))
	bail(err)
	bail(engine.Redeem(ledger, id))
	fmt.Println("channel redeemed")
}

func statusHandler(cmd *cobra.Command, args []string) {
	id, err := parseChannelID(mustFlag(cmd, "channel"))
	bail(err)
	ch, ok := engine.Store.Get(id)
	if !ok {
		log.Fatalf("channel %s not found", id.Hex())
	}
	printChannel(ch)
}

func listHandler(cmd *cobra.Command, args []string) {
	for _, ch := range engine.Store.All() {
		printChannel(ch)
	}
}

func printChannel(ch core.Channel) {
	view := struct {
		ID, Token, PartyA, PartyB                         string
		BalanceA, BalanceB, Nonce, CloseTime, ChallengePeriod string
		Status                                             string
	}{
		ID: ch.ID.Hex(), Token: ch.Token.Hex(), PartyA: ch.PartyA.Hex(), PartyB: ch.PartyB.Hex(),
		BalanceA: ch.BalanceA.String(), BalanceB: ch.BalanceB.String(), Nonce: ch.Nonce.String(),
		CloseTime: ch.CloseTime.String(), ChallengePeriod: ch.ChallengePeriod.String(), Status: ch.Status.String(),
	}
	b, _ := json.MarshalIndent(view, "", "  ")
	fmt.Println(string(b))
}

func mustFlag(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		_ = cmd.Usage()
		log.Fatalf("missing required flag --%s", name)
	}
	return v
}

func bail(err error) {
	if err != nil {
		log.Fatalf("%v", err)
	}
}

//-------------------------------------------------------------------------
// Command tree
//-------------------------------------------------------------------------

var channelCmd = &cobra.Command{
	Use:              "channel",
	Short:            "Manage bilateral payment-channel escrows",
	PersistentPreRun: initMiddleware,
}

var openCmd = &cobra.Command{Use: "open", Short: "Open a new channel as partyA", Run: openHandler}
var joinCmd = &cobra.Command{Use: "join", Short: "Join as partyB", Run: joinHandler}
var closeCmd = &cobra.Command{Use: "close", Short: "Submit a co-signed receipt to close", Run: closeHandler}
var challengeCmd = &cobra.Command{Use: "challenge", Short: "Submit a higher-nonce receipt during the challenge window", Run: challengeHandler}
var redeemCmd = &cobra.Command{Use: "redeem", Short: "Force distribution after the challenge window elapses", Run: redeemHandler}
var channelStatusCmd = &cobra.Command{Use: "status", Short: "Show a channel's current record", Run: statusHandler}
var channelListCmd = &cobra.Command{Use: "list", Short: "List every channel ever opened", Run: listHandler}

func init() {
	channelCmd.PersistentFlags().String("env", "", "path to a .env file (optional)")

	openCmd.Flags().String("counterparty", "", "hex address of partyB [required]")
	openCmd.Flags().String("token", "", "hex address of the token contract [required]")
	openCmd.Flags().String("amount", "", "partyA deposit amount [required]")
	openCmd.Flags().Uint64("period", 0, "challenge period in seconds (0 = no dispute window)")

	joinCmd.Flags().String("channel", "", "channel id in hex [required]")
	joinCmd.Flags().String("amount", "", "partyB deposit amount [required]")

	for _, c := range []*cobra.Command{closeCmd, challengeCmd} {
		c.Flags().String("channel", "", "channel id in hex [required]")
		c.Flags().String("nonce", "", "receipt nonce [required]")
		c.Flags().String("balanceA", "", "receipt balanceA [required]")
		c.Flags().String("balanceB", "", "receipt balanceB [required]")
		c.Flags().String("sigA", "", "partyA signature, 65-byte hex [required]")
		c.Flags().String("sigB", "", "partyB signature, 65-byte hex [required]")
	}

	redeemCmd.Flags().String("channel", "", "channel id in hex [required]")
	channelStatusCmd.Flags().String("channel", "", "channel id in hex [required]")

	channelCmd.AddCommand(openCmd, joinCmd, closeCmd, challengeCmd, redeemCmd, channelStatusCmd, channelListCmd)
}

// ChannelRoute is the entry point command imported by cmd/paychannel.
var ChannelRoute = channelCmd
