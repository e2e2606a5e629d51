package netris

import "github.com/vovakirdan/tui-netris/internal/registry"

func init() {
	registry.Register(IDSolo, func() registry.Game { return New() })
	registry.Register(IDTGM, func() registry.Game { return NewTGM() })
	registry.Register(IDCPU, func() registry.Game { return NewVersusCPU() })
	registry.RegisterOnline(IDVersus, func() registry.OnlineGame { return NewVersusOnline() })
}

var (
	_ registry.Game       = (*Game)(nil)
	_ registry.Game       = (*VersusGame)(nil)
	_ registry.OnlineGame = (*VersusGame)(nil)
	_ EventSource         = (*Game)(nil)
	_ EventSource         = (*VersusGame)(nil)
)
