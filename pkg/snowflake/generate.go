package snowflake

import (
	"errors"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// GeneratorType 区分不同业务的 ID 序列，避免共用一个节点时的热点
type GeneratorType int

const (
	GeneratorTypeProfile GeneratorType = iota
	GeneratorTypePlan
	GeneratorTypeWorkout
	GeneratorTypeMessage
	generatorCount
)

var (
	nodes [generatorCount]*snowflake.Node
	once  sync.Once

	errInvalidMachineID   = errors.New("invalid snowflake machine id")
	errGeneratorUninitial = errors.New("snowflake generator is not initialized")
)

func Init(machineID, dataCenterID int64) error {
	var initErr error

	once.Do(func() {
		if machineID < 0 || machineID > 31 {
			initErr = errInvalidMachineID
			return
		}

		for i := range nodes {
			// datacenterID 和 machineID 都是 0~31，序列类型叠加在 nodeID 低位上
			nodeID := (dataCenterID<<5 | machineID) + int64(i)*64

			node, err := snowflake.NewNode(nodeID % 1024)
			if err != nil {
				initErr = err
				return
			}
			nodes[i] = node
		}
	})

	return initErr
}

// NextID 生成下一个 ID，生成器未初始化时直接 panic
func NextID(t GeneratorType) int64 {
	if t < 0 || t >= generatorCount || nodes[t] == nil {
		panic(errGeneratorUninitial)
	}

	return nodes[t].Generate().Int64()
}
