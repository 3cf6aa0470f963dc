// Package z402 is the Go client for the Z402 "payment required"
// micropayment protocol.
//
// The package wires three core subsystems — a concurrent spend ledger
// (pkg/budget), a retrying request pipeline with typed error
// classification (pkg/transport), and webhook signature verification
// (pkg/webhook) — into thin resource services for payment intents,
// transactions, and webhook management.
//
//	client, err := z402.New("z402_test_...",
//	    z402.WithNetwork(z402.NetworkTestnet))
//	if err != nil { ... }
//	defer client.Close()
//
//	intent, err := client.Payments.Create(ctx, z402.CreatePaymentIntentParams{
//	    Amount:   "0.01",
//	    Resource: "/api/premium/data",
//	})
//
// Autonomous callers attach a budget manager so every Pay call is checked
// against rolling daily and hourly limits before any money moves:
//
//	limits, _ := budget.ParseLimits("1.0", "0.1", "0.01")
//	mgr, _ := budget.New(limits)
//	client, _ := z402.New(apiKey, z402.WithBudget(mgr))
//
//	paid, err := client.Pay(ctx, z402.PayParams{
//	    Amount:      "0.005",
//	    Resource:    "/api/premium/data",
//	    FromAddress: "zs1...",
//	    TxID:        "...",
//	})
//
// Inbound payment-status callbacks are authenticated with pkg/webhook
// before any event handling.
package z402
