package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/rl1809/food-inventory/internal/adapter/handler/pb"
)

const (
	keysPerBatch  = 5
	totalRequests = 50
	foodType      = "fruit"
)

func main() {
	addr := flag.String("addr", "localhost:50051", "gRPC server address")
	flag.Parse()

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to dial %s: %v", *addr, err)
	}
	defer conn.Close()
	client := pb.NewFoodServiceClient(conn)

	// Unique prefix so runs do not see each other's rows
	prefix := "stress-" + uuid.NewString()[:8] + "-"
	names := make([]string, keysPerBatch)
	for i := range names {
		names[i] = fmt.Sprintf("%s%d", prefix, i)
	}

	var successCount atomic.Int32
	var failCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	// Every request upserts the same keys with its own quantity
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			quantity := float64(worker + 1)
			unit := "g"
			items := make([]pb.AddItem, len(names))
			for j := range names {
				name, typ := names[j], foodType
				items[j] = pb.AddItem{Name: &name, Quantity: &quantity, Unit: &unit, Type: &typ}
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			ctx = metadata.AppendToOutgoingContext(ctx, "x-request-id", fmt.Sprintf("%sworker-%d", prefix, worker))

			req, err := pb.NewAddRequest(items...)
			if err != nil {
				failCount.Add(1)
				return
			}
			resp, err := client.Add(ctx, req)
			if err != nil || resp.Status != "success" {
				failCount.Add(1)
				return
			}
			successCount.Add(1)
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	listed, err := client.List(ctx, &pb.ListRequest{Type: foodType, NameFilter: prefix})
	if err != nil {
		log.Fatalf("failed to list: %v", err)
	}

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Keys per batch:   %d\n", keysPerBatch)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", successCount.Load())
	fmt.Printf("Failed:           %d\n", failCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	seen := make(map[string]int)
	for _, item := range listed.Items {
		seen[item.Name]++
		if item.Quantity < 1 || item.Quantity > totalRequests {
			fmt.Printf("FAIL: %s has quantity %v, not one of the submitted values\n", item.Name, item.Quantity)
		}
	}

	duplicates := 0
	for _, name := range names {
		if seen[name] != 1 {
			duplicates++
			fmt.Printf("FAIL: %s stored %d times\n", name, seen[name])
		}
	}
	if duplicates == 0 && len(listed.Items) == keysPerBatch {
		fmt.Println("PASS: one row per natural key")
	}

	// Remove the rows this run created
	for _, name := range names {
		if _, err := client.Remove(ctx, &pb.RemoveRequest{Name: name, Type: foodType}, grpc.WaitForReady(true)); err != nil {
			fmt.Printf("cleanup of %s failed: %v\n", name, err)
		}
	}
}
