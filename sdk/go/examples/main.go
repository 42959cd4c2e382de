// Example chat session against a locally running engine.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	lde "github.com/lead-dialogue-engine/sdk/go"
)

func main() {
	client := lde.NewClient(lde.ClientConfig{
		BaseURL: "http://localhost:8080",
		Timeout: 10 * time.Second,
	})

	ctx := context.Background()
	if err := client.Health(ctx); err != nil {
		log.Fatalf("engine unreachable: %v", err)
	}

	sess, err := client.CreateSession(ctx)
	if err != nil {
		log.Fatalf("create session: %v", err)
	}
	fmt.Println("bot:", sess.Greeting)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you: ")
		if !scanner.Scan() {
			break
		}
		text := scanner.Text()
		if text == "" {
			continue
		}

		res, err := client.SendMessage(ctx, sess.SessionID, text)
		if err != nil {
			log.Fatalf("send message: %v", err)
		}
		fmt.Println("bot:", res.Response)
		if res.Captured {
			fmt.Printf("    [lead: nome=%q telefone=%q email=%q]\n",
				res.Lead.Nome, res.Lead.Telefone, res.Lead.Email)
		}
	}
}
