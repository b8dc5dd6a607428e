// matchcli drives an in-process engine from an interactive prompt. Three
// console clients are preregistered; every event they receive is printed as
// it happens.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"matchd/client"
	"matchd/domain/orderbook"
	"matchd/service"
)

func main() {
	clients := flag.Int("clients", 3, "number of console clients to register")
	flag.Parse()

	svc, err := service.NewOrderService(service.Config{})
	if err != nil {
		log.Fatalf("service init failed: %v", err)
	}
	for i := 1; i <= *clients; i++ {
		name := fmt.Sprintf("client-%d", i)
		if !svc.RegisterClient(orderbook.ClientID(i), client.NewConsole(name, os.Stdout)) {
			log.Fatalf("register %s failed", name)
		}
	}

	run(svc, *clients)
}

func run(svc *service.OrderService, clients int) {
	in := bufio.NewScanner(os.Stdin)
	current := orderbook.ClientID(1)

	for {
		fmt.Printf("\n[client %d] (s)elect client, (d)ump book, (n)ew order, (c)ancel order, (q)uit > ", current)
		if !in.Scan() {
			return
		}
		switch strings.TrimSpace(in.Text()) {
		case "s":
			if id, ok := readInt(in, fmt.Sprintf("client id (1-%d)", clients)); ok {
				if id < 1 || id > int64(clients) {
					fmt.Println("no such client")
					continue
				}
				current = orderbook.ClientID(id)
			}
		case "d":
			dump(svc.Depth())
		case "n":
			newOrder(in, svc, current)
		case "c":
			if id, ok := readInt(in, "order id"); ok {
				if err := svc.CancelOrder(current, orderbook.OrderID(id)); err != nil {
					fmt.Println("cancel failed:", err)
				}
			}
		case "q":
			return
		default:
			fmt.Println("unknown command")
		}
	}
}

func newOrder(in *bufio.Scanner, svc *service.OrderService, current orderbook.ClientID) {
	side, ok := readSide(in)
	if !ok {
		return
	}
	fmt.Print("price (e.g. 100.25, empty for market): ")
	if !in.Scan() {
		return
	}
	var price orderbook.Price
	if text := strings.TrimSpace(in.Text()); text != "" {
		var err error
		price, err = orderbook.ParsePrice(text)
		if err != nil {
			fmt.Println(err)
			return
		}
	}
	qty, ok := readInt(in, "quantity")
	if !ok {
		return
	}
	if _, err := svc.SubmitOrder(current, side, price, qty); err != nil {
		fmt.Println("submit failed:", err)
	}
}

func readSide(in *bufio.Scanner) (orderbook.Side, bool) {
	fmt.Print("side (b/s): ")
	if !in.Scan() {
		return orderbook.SideNone, false
	}
	switch strings.TrimSpace(in.Text()) {
	case "b":
		return orderbook.Buy, true
	case "s":
		return orderbook.Sell, true
	default:
		fmt.Println("side must be b or s")
		return orderbook.SideNone, false
	}
}

func readInt(in *bufio.Scanner, prompt string) (int64, bool) {
	fmt.Printf("%s: ", prompt)
	if !in.Scan() {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(in.Text()), 10, 64)
	if err != nil {
		fmt.Println("not a number")
		return 0, false
	}
	return v, true
}

func dump(d orderbook.Depth) {
	fmt.Println("BIDS")
	dumpSide(d.Bids)
	fmt.Println("ASKS")
	dumpSide(d.Asks)
}

func dumpSide(levels []orderbook.LevelDepth) {
	for _, lvl := range levels {
		if lvl.Market && len(lvl.Orders) == 0 {
			continue
		}
		label := lvl.Price.String()
		if lvl.Market {
			label = "market"
		}
		fmt.Printf("  %-10s volume=%d\n", label, lvl.Volume)
		for _, o := range lvl.Orders {
			fmt.Printf("    client=%d order=%d outstanding=%d\n", o.Client, o.Order, o.Outstanding)
		}
	}
}
