// Package main provides the vapid GUI application.
package main

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ZacharyZcR/vapid/internal/cli"
	"github.com/ZacharyZcR/vapid/internal/disasm"
	"github.com/ZacharyZcR/vapid/internal/pe"
)

const disasmCount = 8

func main() {
	myApp := app.New()
	myWindow := myApp.NewWindow("vapid - 虚拟地址到文件偏移转换")
	myWindow.Resize(fyne.NewSize(900, 600))

	// File path
	filePathEntry := widget.NewEntry()
	filePathEntry.SetPlaceHolder("选择32位PE文件...")

	// Target address
	addressEntry := widget.NewEntry()
	addressEntry.SetPlaceHolder("0x401000")

	rvaCheck := widget.NewCheck("按RVA解释", nil)

	// Result output
	resultOutput := widget.NewMultiLineEntry()
	resultOutput.SetPlaceHolder("转换结果将显示在这里...")
	resultOutput.TextStyle = fyne.TextStyle{Monospace: true}
	resultOutput.Disable()

	statusLabel := widget.NewLabel("就绪")

	fileButton := widget.NewButton("选择文件", func() {
		dialog.ShowFileOpen(func(file fyne.URIReadCloser, err error) {
			if err != nil || file == nil {
				return
			}
			defer func() { _ = file.Close() }()
			filePathEntry.SetText(file.URI().Path())
		}, myWindow)
	})

	translateButton := widget.NewButton("转换", func() {
		if filePathEntry.Text == "" {
			dialog.ShowError(fmt.Errorf("请先选择PE文件"), myWindow)
			return
		}
		if addressEntry.Text == "" {
			dialog.ShowError(fmt.Errorf("请输入目标地址"), myWindow)
			return
		}

		path, address, asRVA := filePathEntry.Text, addressEntry.Text, rvaCheck.Checked
		statusLabel.SetText("正在转换...")
		go func() {
			result, err := translateFile(path, address, asRVA)
			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(err, myWindow)
					statusLabel.SetText("转换失败")
					return
				}
				resultOutput.SetText(result)
				statusLabel.SetText("转换完成")
			})
		}()
	})

	// Layout
	fileBox := container.NewBorder(nil, nil, nil, fileButton, filePathEntry)
	addressBox := container.NewBorder(nil, nil, nil,
		container.NewHBox(rvaCheck, translateButton), addressEntry)

	mainContent := container.NewBorder(
		container.NewVBox(
			widget.NewLabel("PE文件路径:"),
			fileBox,
			widget.NewLabel("目标虚拟地址 (十进制或0x十六进制):"),
			addressBox,
			widget.NewSeparator(),
		),
		container.NewVBox(
			widget.NewSeparator(),
			statusLabel,
		),
		nil,
		nil,
		container.NewVScroll(resultOutput),
	)

	myWindow.SetContent(mainContent)
	myWindow.ShowAndRun()
}

// translateFile opens path, translates the address and renders the result,
// the section table and a short disassembly as text.
func translateFile(path, addressText string, asRVA bool) (string, error) {
	address, err := cli.ParseAddress(addressText)
	if err != nil {
		return "", err
	}

	reader, err := pe.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = reader.Close() }()

	f := reader.File()

	var res pe.Result
	if asRVA {
		res, err = f.TranslateRVA(address)
	} else {
		res, err = f.Translate(address)
	}
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString(cli.FormatResult(res) + "\n")
	if res.Mapped {
		output.WriteString(fmt.Sprintf("节区: %s\n", f.Sections[res.Section].NameString()))
	}

	output.WriteString(fmt.Sprintf("\n镜像基址: 0x%X\n", f.ImageBase()))
	output.WriteString(fmt.Sprintf("节区信息 (%d 个):\n", len(f.Sections)))
	for i, s := range f.Sections {
		marker := " "
		if res.Mapped && res.Section == i {
			marker = "*"
		}
		output.WriteString(fmt.Sprintf(" %s %-8s VA=0x%08X-0x%08X  文件偏移=0x%08X\n",
			marker, s.NameString(), s.VirtualAddress, uint64(s.VirtualAddress)+uint64(s.VirtualSize), s.PointerToRawData))
	}

	if err := f.Sections.Validate(f.ImageBase()); err != nil {
		output.WriteString(fmt.Sprintf("\n警告: %v\n", err))
	}

	if res.Mapped {
		code := reader.Image().Tail(uint64(res.FileOffset), 15*disasmCount)
		output.WriteString("\n反汇编:\n")
		for _, inst := range disasm.Disassemble(code, res.VirtualAddress, res.FileOffset, disasmCount) {
			output.WriteString(fmt.Sprintf("  0x%08X  %s\n", inst.Address, inst.Text))
		}
	}

	return output.String(), nil
}
