package main

import (
	"context"
	"fmt"

	"github.com/jimyag/pvetpl/internal/pvetpl"
	"github.com/jimyag/pvetpl/internal/pvetpl/config"
	"github.com/jimyag/pvetpl/pkg/opserror"
	"github.com/spf13/cobra"
)

// rootFlags 命令行标志的值，Changed 的才会覆盖配置
type rootFlags struct {
	vmid     int
	name     string
	bridge   string
	storage  string
	image    string
	user     string
	password string
	sshKey   string
	yes      bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "pvetpl",
		Short: "Build a cloud-init ready VM template on a Proxmox VE node",
		Long: `pvetpl downloads an Ubuntu cloud image (or takes a local one), bakes
qemu-guest-agent into it, creates a VM around it with qm, wires up the
cloud-init drive and converts the result into a reusable template.

Run it directly on a Proxmox VE node. Every flag can also be set via a
PVETPL_* environment variable; anything still missing is asked
interactively unless --yes is given.

To attach a vendor-data snippet, set PVETPL_SNIPPETS_DIR to a snippets
directory and PVETPL_SNIPPETS_STORAGE to the storage that directory
belongs to (default "local", whose snippets directory is
/var/lib/vz/snippets).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}
			applyFlags(cmd, flags, cfg)

			ctx := context.Background()
			provisioner, err := pvetpl.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer provisioner.Close()

			_, err = provisioner.Run(ctx)
			return err
		},
	}

	cmd.Flags().IntVar(&flags.vmid, "vmid", 0, "VMID for the template (default: next free)")
	cmd.Flags().StringVar(&flags.name, "name", "", "template name (default: derived from the image)")
	cmd.Flags().StringVar(&flags.bridge, "bridge", "vmbr0", "network bridge for net0")
	cmd.Flags().StringVar(&flags.storage, "storage", "", "storage pool for the template disk")
	cmd.Flags().StringVar(&flags.image, "image", "", "path to a local cloud image (.img or .qcow2)")
	cmd.Flags().StringVar(&flags.user, "user", "ubuntu", "cloud-init user name")
	cmd.Flags().StringVar(&flags.password, "password", "", "cloud-init password (asked interactively when omitted)")
	cmd.Flags().StringVar(&flags.sshKey, "sshkey", "", "path to an SSH public key file")
	cmd.Flags().BoolVar(&flags.yes, "yes", false, "non-interactive mode, accept all defaults")

	// 未知选项按使用错误处理，退出码也要跟着变
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return opserror.WrapError(
			opserror.ErrUnknownOption,
			fmt.Sprintf("Unknown option: %v\nRun '%s --help' for usage", err, cmd.CommandPath()),
			err,
		)
	})

	cmd.AddCommand(newListCmd())
	return cmd
}

// applyFlags 用显式传入的标志覆盖环境变量配置
func applyFlags(cmd *cobra.Command, flags *rootFlags, cfg *config.Config) {
	if cmd.Flags().Changed("vmid") {
		cfg.VMID = flags.vmid
	}
	if cmd.Flags().Changed("name") {
		cfg.Name = flags.name
	}
	if cmd.Flags().Changed("bridge") {
		cfg.Bridge = flags.bridge
	}
	if cmd.Flags().Changed("storage") {
		cfg.Storage = flags.storage
	}
	if cmd.Flags().Changed("image") {
		cfg.Image = flags.image
	}
	if cmd.Flags().Changed("user") {
		cfg.User = flags.user
	}
	if cmd.Flags().Changed("password") {
		cfg.Password = flags.password
	}
	if cmd.Flags().Changed("sshkey") {
		cfg.SSHKey = flags.sshKey
	}
	if cmd.Flags().Changed("yes") {
		cfg.AssumeYes = flags.yes
	}
}
