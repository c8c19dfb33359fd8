package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/longnd/toystore-service/pkg/db"
)

// dbcheck verifies the database is reachable and the expected tables exist.
func main() {
	_ = godotenv.Load()

	cfg, err := db.LoadPostgresConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	conn, err := db.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		"products", "users", "shipping_rules", "vouchers", "voucher_usage",
		"guest_cart_lines", "orders", "order_lines", "order_status_history",
		"reviews", "banners",
	}

	missing := 0
	for _, table := range tables {
		var exists bool
		err := conn.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`,
			table).Scan(&exists)
		if err != nil {
			log.Fatalf("check table %s: %v", table, err)
		}
		if exists {
			fmt.Printf("ok      %s\n", table)
		} else {
			fmt.Printf("MISSING %s\n", table)
			missing++
		}
	}

	if missing > 0 {
		fmt.Printf("%d table(s) missing; run schema.sql\n", missing)
		os.Exit(1)
	}
	fmt.Println("database ok")
}
