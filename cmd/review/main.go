// 离线审核工具：只读取待审核队列并打印，不做任何修改。
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"infographic-gateway/internal/store"
)

func main() {
	addr := flag.String("addr", "localhost:6379", "Redis 地址")
	password := flag.String("password", "", "Redis 密码")
	db := flag.Int("db", 0, "Redis 数据库编号")
	listKey := flag.String("list", "infographic-requests", "待审核队列键名")
	limit := flag.Int("limit", 0, "最多读取条数，0 表示全部")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr:     *addr,
		Password: *password,
		DB:       *db,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	requestStore := store.NewRedisRequestStore(client, *listKey)
	submissions, err := requestStore.Requests(ctx, *limit)
	if err != nil {
		log.Fatalf("读取队列失败: %v", err)
	}

	fmt.Printf("共 %d 条待审核请求（新到旧）\n", len(submissions))
	for i, submission := range submissions {
		fmt.Printf("\n#%d  %s\n", i+1, submission.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("id: %s  ip: %s\n", submission.ID, submission.IPHashed)
		fmt.Printf("%s\n", submission.Message)
	}
}
