// Package qm 封装 Proxmox VE 的 qm 命令行工具
//
// 该包提供了模板制作流程需要的 VM 管理操作，包括：
//   - 查询状态和配置（Status / Config / IsTemplate）
//   - 创建 VM（Create）
//   - 修改配置（Set）
//   - 导入磁盘镜像（ImportDisk）
//   - 调整磁盘大小（Resize）
//   - 转换为模板（Template）
//   - 停止和销毁（Stop / Destroy）
//
// 所有操作都支持 context 超时控制。所有持久状态（VM / 模板定义）
// 都保存在 Proxmox 自己的配置存储中，这里只是对 qm 的薄封装。
//
// 示例：
//
//	client, err := qm.NewClient()
//
//	// 探测 VMID
//	status, err := client.Status(ctx, 9000)
//	if errors.Is(err, qm.ErrVMNotFound) {
//	    // VMID 空闲
//	}
//
//	// 创建 VM 并导入磁盘
//	err = client.Create(ctx, 9000, &qm.CreateOptions{Name: "ubuntu-tpl", MemoryMB: 2048})
//	volume, err := client.ImportDisk(ctx, 9000, "/root/noble.img", "local-lvm")
//	err = client.Set(ctx, 9000, qm.Option{Name: "scsi0", Value: volume})
//
//	// 转换为模板
//	err = client.Template(ctx, 9000)
package qm
