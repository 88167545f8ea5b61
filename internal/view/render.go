package view

import (
	"fmt"
	"io"
	"sync"

	"github.com/pterm/pterm"

	"github.com/weisyn/zkapp/internal/core/store"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/zkapp/pkg/types"
)

// Renderer 状态面板渲染器
//
// 订阅 store.changed 事件，按版本号去重后输出当前阶段与状态表。
type Renderer struct {
	w           io.Writer
	explorerURL func(hash string) string

	mu          sync.Mutex
	lastVersion uint64
	lastStage   Stage
	rendered    bool
}

// NewRenderer 创建渲染器，explorerURL 可以为 nil
func NewRenderer(w io.Writer, explorerURL func(hash string) string) *Renderer {
	return &Renderer{w: w, explorerURL: explorerURL}
}

// Attach 订阅状态变更与交易事件
func (r *Renderer) Attach(bus event.EventBus) error {
	if err := bus.Subscribe(types.EventTypeStoreChanged, r.onChange); err != nil {
		return err
	}
	return bus.Subscribe(types.EventTypeTransactionSent, r.onTransaction)
}

func (r *Renderer) onChange(st store.State) {
	if err := r.Render(st); err != nil {
		pterm.Error.WithWriter(r.w).Printfln("渲染状态失败: %v", err)
	}
}

func (r *Renderer) onTransaction(hash string) {
	text := "交易已提交: " + hash
	if r.explorerURL != nil {
		text = "交易已提交，查看: " + r.explorerURL(hash)
	}
	pterm.Success.WithWriter(r.w).Println(text)
}

// Render 渲染一个快照；旧版本快照被忽略，阶段未变时只刷新状态表
func (r *Renderer) Render(st store.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rendered && st.Version <= r.lastVersion {
		return nil
	}

	stage := StageOf(st)
	if !r.rendered || stage != r.lastStage {
		stagePrinter(stage).WithWriter(r.w).Println(stage.Message())
		if stage == StageSetupFailed {
			pterm.Error.WithWriter(r.w).Println(st.SetupError)
		}
	}
	r.rendered, r.lastVersion, r.lastStage = true, st.Version, stage

	if !st.HasBeenSetup {
		return nil
	}
	return pterm.DefaultTable.
		WithWriter(r.w).
		WithHasHeader().
		WithHeaderRowSeparator("-").
		WithData(Rows(st)).
		Render()
}

// Rows 状态表数据（第一行为表头）
func Rows(st store.State) [][]string {
	num := "-"
	if st.Num != nil {
		num = *st.Num
	}
	return [][]string{
		{"项目", "值"},
		{"账户", st.PublicKey},
		{"合约", st.ZkappPublicKey},
		{"当前值", num},
		{"账户已注资", fmt.Sprintf("%t", st.AccountExists)},
		{"交易进行中", fmt.Sprintf("%t", st.CreatingTransaction)},
	}
}

func stagePrinter(s Stage) pterm.PrefixPrinter {
	switch s {
	case StageNoWallet, StageSetupFailed:
		return pterm.Error
	case StageAccountMissing:
		return pterm.Warning
	case StageReady:
		return pterm.Success
	default:
		return pterm.Info
	}
}
