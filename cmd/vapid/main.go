// Package main provides the vapid CLI tool: Virtual Address Pointer In Disk.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ZacharyZcR/vapid/internal/cli"
	"github.com/ZacharyZcR/vapid/internal/disasm"
	"github.com/ZacharyZcR/vapid/internal/pe"
	"github.com/fatih/color"
)

// maxDisasmBytes bounds how much of the file is handed to the decoder.
const maxDisasmBytes = 15 * 256

var errArgCount = errors.New("参数数量错误")

type options struct {
	verbose        bool
	rva            bool
	sections       bool
	suspiciousOnly bool
	disasmCount    uint
	detectCaves    bool
	minCaveSize    uint
	noColor        bool
	inputFile      string
	address        string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		// The flag package reports its own parse errors.
		if errors.Is(err, errArgCount) {
			cli.NewLogger(stderr, false).Errorf("%v", err)
		}
		return 1
	}

	if opts.noColor {
		color.NoColor = true
	}

	log := cli.NewLogger(stderr, opts.verbose)
	log.Debugf("Verbose Logging Enabled.")

	if err := translate(opts, log, cli.NewReporter(stdout)); err != nil {
		log.Errorf("%v", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("vapid", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.verbose, "v", false, "详细模式：输出调试日志")
	fs.BoolVar(&opts.rva, "rva", false, "将地址视为RVA（自动加上镜像基址）")
	fs.BoolVar(&opts.sections, "sections", false, "输出分析报告（节区表、熵值、校验和）")
	fs.BoolVar(&opts.suspiciousOnly, "s", false, "分析报告仅显示可疑节区（RWX权限）")
	fs.UintVar(&opts.disasmCount, "disasm", 0, "在文件偏移处反汇编的指令数（0表示不反汇编）")
	fs.BoolVar(&opts.detectCaves, "caves", false, "检测Code Caves（节区内的填充空隙）")
	fs.UintVar(&opts.minCaveSize, "min-cave-size", 32, "Code Cave最小大小（字节）")
	fs.BoolVar(&opts.noColor, "no-color", false, "禁用彩色输出")
	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() != 2 {
		printUsage(stderr, fs)
		return nil, fmt.Errorf("%w: 需要2个参数，实际 %d 个", errArgCount, fs.NArg())
	}

	opts.inputFile = fs.Arg(0)
	opts.address = fs.Arg(1)
	return opts, nil
}

func translate(opts *options, log *cli.Logger, reporter *cli.Reporter) error {
	if err := validateInputFile(opts.inputFile); err != nil {
		return err
	}

	address, err := cli.ParseAddress(opts.address)
	if err != nil {
		return err
	}

	reader, err := pe.Open(opts.inputFile)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	f := reader.File()
	logHeaders(log, f)

	if err := f.Sections.Validate(f.ImageBase()); err != nil {
		log.Warnf("%v", err)
	}

	if opts.sections {
		info, err := pe.NewAnalyzer(reader).Analyze()
		if err != nil {
			return err
		}
		reporter.SetSuspiciousOnly(opts.suspiciousOnly)
		reporter.PrintInfo(info)
	}

	if opts.detectCaves {
		caves, err := pe.NewCodeCaveDetector(reader.Image(), f).FindCodeCaves(uint32(opts.minCaveSize))
		if err != nil {
			return err
		}
		reporter.PrintCodeCaves(caves, uint32(opts.minCaveSize), f.ImageBase())
	}

	var res pe.Result
	if opts.rva {
		res, err = f.TranslateRVA(address)
	} else {
		res, err = f.Translate(address)
	}
	if err != nil {
		return err
	}

	if res.Mapped {
		log.Debugf("0x%X 位于节区 %d (%s)", res.VirtualAddress, res.Section, f.Sections[res.Section].NameString())
	} else {
		log.Debugf("0x%X 不在任何节区内", res.VirtualAddress)
	}
	reporter.PrintResult(res)

	if opts.disasmCount > 0 && res.Mapped {
		code := reader.Image().Tail(uint64(res.FileOffset), maxDisasmBytes)
		reporter.PrintDisassembly(disasm.Disassemble(code, res.VirtualAddress, res.FileOffset, int(opts.disasmCount)))
	}

	return nil
}

func validateInputFile(path string) error {
	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("输入文件 '%s' 不存在", path)
	}
	if !stat.Mode().IsRegular() {
		return fmt.Errorf("输入文件 '%s' 不是普通文件", path)
	}
	return nil
}

func logHeaders(log *cli.Logger, f *pe.File) {
	if !log.Enabled(cli.LevelDebug) {
		return
	}

	log.Debugf("e_lfanew: 0x%X", f.DosHeader.Lfanew)
	log.Debugf("NumberOfSections: %d, SizeOfOptionalHeader: 0x%X", f.NtHeader.NumberOfSections, f.NtHeader.SizeOfOptionalHeader)
	log.Debugf("ImageBase: 0x%X, AddressOfEntryPoint: 0x%X", f.NtHeader.ImageBase, f.NtHeader.AddressOfEntryPoint)
	for i, s := range f.Sections {
		log.Debugf("节区 %d: %-8s VA=0x%08X VSize=0x%08X Raw=0x%08X",
			i, s.NameString(), s.VirtualAddress, s.VirtualSize, s.PointerToRawData)
	}
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	cyan := color.New(color.FgCyan, color.Bold)
	_, _ = cyan.Fprintln(w, "\nvapid - 虚拟地址到文件偏移转换工具 (32位PE)")

	_, _ = fmt.Fprintln(w, "\n用法:")
	_, _ = fmt.Fprintln(w, "  vapid [选项] <PE文件路径> <目标虚拟地址>")
	_, _ = fmt.Fprintln(w, "\n地址可以是十进制或0x前缀的十六进制。")
	_, _ = fmt.Fprintln(w, "\n选项:")
	fs.PrintDefaults()

	_, _ = fmt.Fprintln(w, "\n示例:")
	_, _ = fmt.Fprintln(w, "  vapid program.exe 0x401500")
	_, _ = fmt.Fprintln(w, "  vapid -v program.exe 4199680")
	_, _ = fmt.Fprintln(w, "  vapid -rva program.exe 0x1500")
	_, _ = fmt.Fprintln(w, "  vapid -sections -disasm 8 program.exe 0x401000")
	_, _ = fmt.Fprintln(w, "  vapid -caves -min-cave-size 64 program.exe 0x401000")
	_, _ = fmt.Fprintln(w)
}
