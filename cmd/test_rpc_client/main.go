package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/JoeShih716/go-point-wallet/pkg/grpc"
	"github.com/JoeShih716/go-point-wallet/pkg/logger"
	pb "github.com/JoeShih716/go-point-wallet/proto"
)

// 對單一使用者併發送出 charge/use，最後驗證餘額守恆:
// final == initial + Σ(成功的 charge) - Σ(成功的 use)，且紀錄筆數 == 成功筆數
func main() {
	target := flag.String("target", "localhost:50051", "gRPC server address")
	userID := flag.Int64("user", 1, "user id to load")
	total := flag.Int("n", 10000, "total requests")
	concurrency := flag.Int("c", 100, "concurrent requests")
	flag.Parse()

	helper := log.NewHelper(logger.New(os.Stdout, "info"))

	pool := grpc.NewPool()
	defer pool.Close()
	conn, err := pool.GetConnection(*target)
	if err != nil {
		helper.Fatalf("did not connect: %v", err)
	}
	c := pb.NewPointServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	before, err := search(ctx, c, *userID)
	if err != nil {
		helper.Fatalf("search failed: %v", err)
	}
	beforeHistory, err := historyLen(ctx, c, *userID)
	if err != nil {
		helper.Fatalf("history failed: %v", err)
	}

	var (
		delta    atomic.Int64
		accepted atomic.Int64
		rejected atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*concurrency)
	startTime := time.Now()

	for i := 0; i < *total; i++ {
		i := i
		g.Go(func() error {
			// 偶數 charge，奇數 use，金額 1~10
			amount := int64(i%10 + 1)
			req := pb.NewAmountRequest(*userID, amount)
			var err error
			if i%2 == 0 {
				_, err = c.Charge(gctx, req)
				if err == nil {
					delta.Add(amount)
				}
			} else {
				_, err = c.Use(gctx, req)
				if err == nil {
					delta.Add(-amount)
				}
			}
			switch {
			case err == nil:
				accepted.Add(1)
			case status.Code(err) == codes.FailedPrecondition:
				rejected.Add(1)
			default:
				return fmt.Errorf("request %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		helper.Fatalf("load failed: %v", err)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Completed %d requests in %v\n", *total, elapsed)
	fmt.Printf("TPS: %.2f\n", float64(*total)/elapsed.Seconds())
	fmt.Printf("Accepted: %d, Rejected (insufficient funds): %d\n", accepted.Load(), rejected.Load())

	after, err := search(ctx, c, *userID)
	if err != nil {
		helper.Fatalf("search failed: %v", err)
	}
	afterHistory, err := historyLen(ctx, c, *userID)
	if err != nil {
		helper.Fatalf("history failed: %v", err)
	}

	var errs []error
	if want := before.Point + delta.Load(); after.Point != want {
		errs = append(errs, fmt.Errorf("balance mismatch: got %d, want %d", after.Point, want))
	}
	if want := beforeHistory + int(accepted.Load()); afterHistory != want {
		errs = append(errs, fmt.Errorf("history mismatch: got %d records, want %d", afterHistory, want))
	}
	if err := errors.Join(errs...); err != nil {
		helper.Fatalf("conservation check failed: %v", err)
	}
	fmt.Printf("Balance conserved: %d -> %d\n", before.Point, after.Point)
}

func search(ctx context.Context, c pb.PointServiceClient, userID int64) (pb.UserPoint, error) {
	resp, err := c.Search(ctx, wrapperspb.Int64(userID))
	if err != nil {
		return pb.UserPoint{}, err
	}
	return pb.UserPointFromStruct(resp)
}

func historyLen(ctx context.Context, c pb.PointServiceClient, userID int64) (int, error) {
	resp, err := c.History(ctx, wrapperspb.Int64(userID))
	if err != nil {
		return 0, err
	}
	return len(resp.GetValues()), nil
}
