package util

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	idNode     *snowflake.Node
	idNodeOnce sync.Once
)

// IDNode 返回全局雪花节点。
// 节点号从 SNOWFLAKE_NODE 读取（多实例部署时必须互不相同），默认 1。
// 雪花 ID 单调有序，消息以它作主键即可按发送顺序排序与去重。
func IDNode() *snowflake.Node {
	idNodeOnce.Do(func() {
		nodeID := int64(1)
		if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				nodeID = n
			}
		}
		node, err := snowflake.NewNode(nodeID)
		if err != nil {
			// 节点号非法时回退到 1，启动期配置错误不应导致崩溃
			node, _ = snowflake.NewNode(1)
		}
		idNode = node
	})
	return idNode
}

// NextID 生成下一个雪花 ID。
func NextID() int64 {
	return IDNode().Generate().Int64()
}
