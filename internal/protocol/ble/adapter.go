package ble

// Adapter BLE 方言适配器：流式解码 + 路由表
type Adapter struct {
	decoder *StreamDecoder
	table   *Table
}

func NewAdapter() *Adapter { return &Adapter{decoder: NewStreamDecoder(), table: NewTable()} }

// Register 注册指令处理器
func (a *Adapter) Register(cmd uint8, h Handler) { a.table.Register(cmd, h) }

// ProcessBytes 处理上行字节流：切分帧并路由
func (a *Adapter) ProcessBytes(p []byte) error {
	frames, err := a.decoder.Feed(p)
	if err != nil {
		return err
	}
	for _, fr := range frames {
		if err := a.table.Route(fr); err != nil {
			return err
		}
	}
	return nil
}

// Sniff 初判是否为 BLE 方言（首字节 0xD0）
func (a *Adapter) Sniff(prefix []byte) bool {
	return len(prefix) >= 1 && prefix[0] == MarkerStart
}
