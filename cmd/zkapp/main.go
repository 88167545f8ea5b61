// zkapp 命令行入口
//
// 子命令：
//   - run     启动状态面板、本地状态服务与后台流程
//   - worker  以 WebSocket 方式对外提供 worker
//   - devnet  启动本地 GraphQL 账本
//   - update  执行一次合约更新交易
//   - value   读取合约当前值
//   - keygen  生成钱包助记词
package main

func main() {
	Execute()
}
