//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/voxelsplace/bloxdschem/api"
	"github.com/voxelsplace/bloxdschem/schem"
)

func bytesFromJS(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

func bytesToJS(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

// imageToSchematic(rgba Uint8Array, width, height, orientation, [label], [blockHeight])
// The pixels are ImageData.data viewed as a Uint8Array. A positive
// blockHeight resizes the image to that many blocks tall first.
func imageToSchematic(this js.Value, args []js.Value) any {
	if len(args) < 4 {
		return js.ValueOf("usage: imageToSchematic(rgba, width, height, orientation, [label], [blockHeight])")
	}
	o, err := schem.ParseOrientation(args[3].String())
	if err != nil {
		return js.ValueOf(err.Error())
	}
	opts := api.DefaultConvertOptions()
	opts.Orientation = o
	if len(args) > 4 && args[4].Type() == js.TypeString {
		opts.Label = args[4].String()
	}
	if len(args) > 5 && args[5].Type() == js.TypeNumber {
		opts.Height = args[5].Int()
	}
	out, err := api.PixelsToSchematic(bytesFromJS(args[0]), args[1].Int(), args[2].Int(), opts)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func schematicToGLB(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing schematic bytes")
	}
	out, err := api.SchematicToGLB(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func packSchematics(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing files object")
	}
	filesObj := args[0]
	files := map[string][]byte{}
	keys := js.Global().Get("Object").Call("keys", filesObj)
	for i := 0; i < keys.Length(); i++ {
		k := keys.Index(i).String()
		files[k] = bytesFromJS(filesObj.Get(k))
	}
	out, err := api.PackSchematics(files, schem.LayoutCDC, schem.PackCompZstd)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func unpackSchematics(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing pack bytes")
	}
	files, err := api.UnpackSchematics(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	result := js.Global().Get("Object").New()
	for name, b := range files {
		result.Set(name, bytesToJS(b))
	}
	return result
}

func main() {
	js.Global().Set("imageToSchematic", js.FuncOf(imageToSchematic))
	js.Global().Set("schematicToGLB", js.FuncOf(schematicToGLB))
	js.Global().Set("packSchematics", js.FuncOf(packSchematics))
	js.Global().Set("unpackSchematics", js.FuncOf(unpackSchematics))
	select {}
}
