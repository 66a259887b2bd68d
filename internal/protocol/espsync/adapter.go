package espsync

// Adapter 同步方言适配器：流式解码 + 路由表
type Adapter struct {
	decoder *StreamDecoder
	table   *Table
}

func NewAdapter() *Adapter { return &Adapter{decoder: NewStreamDecoder(), table: NewTable()} }

// Register 注册消息处理器
func (a *Adapter) Register(msgType uint8, h Handler) { a.table.Register(msgType, h) }

// ProcessBytes 处理上行字节流：切分消息并路由
func (a *Adapter) ProcessBytes(p []byte) error {
	msgs, err := a.decoder.Feed(p)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		if err := a.table.Route(m); err != nil {
			return err
		}
	}
	return nil
}

// Sniff 初判是否为同步方言（检查 magic 'N''P'）
func (a *Adapter) Sniff(prefix []byte) bool {
	if len(prefix) < 2 {
		return false
	}
	return prefix[0] == magic[0] && prefix[1] == magic[1]
}
