// Package prompt 提供交互式输入
// 所有方法都支持注入输入输出流，便于测试
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Prompter 交互式输入器
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	// stdinFd 是标准输入的文件描述符
	// 只有输入是终端时才用 term.ReadPassword 关闭回显
	stdinFd int
	isTerm  bool
}

// New 创建使用标准输入输出的 Prompter
func New() *Prompter {
	fd := int(os.Stdin.Fd())
	return &Prompter{
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		stdinFd: fd,
		isTerm:  term.IsTerminal(fd),
	}
}

// NewWithStreams 使用指定的输入输出流创建 Prompter（用于测试）
func NewWithStreams(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// readLine 读取一行输入并去掉首尾空白
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Ask 询问一个字符串，空输入返回默认值
func (p *Prompter) Ask(label, fallback string) (string, error) {
	if fallback != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, fallback)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	input, err := p.readLine()
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if input == "" {
		return fallback, nil
	}
	return input, nil
}

// AskInt 询问一个整数，空输入返回默认值
func (p *Prompter) AskInt(label string, fallback int) (int, error) {
	input, err := p.Ask(label, strconv.Itoa(fallback))
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", input, err)
	}
	return n, nil
}

// Confirm 询问是/否，空输入返回默认值
func (p *Prompter) Confirm(label string, fallback bool) (bool, error) {
	hint := "y/N"
	if fallback {
		hint = "Y/n"
	}
	fmt.Fprintf(p.out, "%s [%s]: ", label, hint)

	input, err := p.readLine()
	if err != nil {
		return false, fmt.Errorf("read input: %w", err)
	}

	switch strings.ToLower(input) {
	case "":
		return fallback, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid answer %q", input)
}

// Select 打印编号菜单并返回选中项的下标
func (p *Prompter) Select(label string, options []string, fallback int) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("no options to select from")
	}

	fmt.Fprintf(p.out, "%s:\n", label)
	for i, option := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, option)
	}

	choice, err := p.AskInt("Enter number", fallback+1)
	if err != nil {
		return 0, err
	}
	if choice < 1 || choice > len(options) {
		return 0, fmt.Errorf("choice %d out of range 1-%d", choice, len(options))
	}
	return choice - 1, nil
}

// Password 询问密码
// 输入是终端时关闭回显，否则按普通行读取（管道和测试场景）
func (p *Prompter) Password(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)

	if p.isTerm {
		data, err := term.ReadPassword(p.stdinFd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(data), nil
	}

	line, err := p.readLine()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return line, nil
}
