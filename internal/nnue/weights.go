package nnue

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// LoadWeights loads network weights from a binary file.
//
// File format (no magic number or version -- three raw little-endian
// u32 dimension counts, then the weights themselves):
//
//	InputLayerSize  uint32 (must equal HalfKPSize)
//	HiddenLayerSize uint32 (must equal HiddenSize)
//	OutputLayerSize uint32 (must equal OutputSize)
//	L1Weights       HalfKPSize * HiddenSize * int16
//	L1Bias          HiddenSize * int16
//	OutputWeights   2*HiddenSize * int8
//	OutputBias      int32
func (n *Network) LoadWeights(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open weights file: %w", err)
	}
	defer f.Close()

	return n.LoadWeightsFromReader(f)
}

// LoadWeightsFromReader loads network weights from an io.Reader.
func (n *Network) LoadWeightsFromReader(r io.Reader) error {
	dims, err := readDims(r)
	if err != nil {
		return err
	}
	if dims[0] != HalfKPSize {
		return fmt.Errorf("input layer size mismatch: expected %d, got %d", HalfKPSize, dims[0])
	}
	if dims[1] != HiddenSize {
		return fmt.Errorf("hidden layer size mismatch: expected %d, got %d", HiddenSize, dims[1])
	}
	if dims[2] != OutputSize {
		return fmt.Errorf("output layer size mismatch: expected %d, got %d", OutputSize, dims[2])
	}

	for i := 0; i < HalfKPSize; i++ {
		if err := binary.Read(r, binary.LittleEndian, &n.L1Weights[i]); err != nil {
			return fmt.Errorf("failed to read L1 weights at %d: %w", i, err)
		}
	}

	if err := binary.Read(r, binary.LittleEndian, &n.L1Bias); err != nil {
		return fmt.Errorf("failed to read L1 bias: %w", err)
	}

	if err := binary.Read(r, binary.LittleEndian, &n.OutputWeights); err != nil {
		return fmt.Errorf("failed to read output weights: %w", err)
	}

	if err := binary.Read(r, binary.LittleEndian, &n.OutputBias); err != nil {
		return fmt.Errorf("failed to read output bias: %w", err)
	}

	return nil
}

func readDims(r io.Reader) ([3]uint32, error) {
	var dims [3]uint32
	for i := range dims {
		if err := binary.Read(r, binary.LittleEndian, &dims[i]); err != nil {
			return dims, fmt.Errorf("failed to read dimension header: %w", err)
		}
	}
	return dims, nil
}

// SaveWeights saves network weights to a binary file, in the same
// header-less, three-dimension-count format LoadWeights expects.
func (n *Network) SaveWeights(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create weights file: %w", err)
	}
	defer f.Close()

	dims := [3]uint32{HalfKPSize, HiddenSize, OutputSize}
	if err := binary.Write(f, binary.LittleEndian, &dims); err != nil {
		return fmt.Errorf("failed to write dimension header: %w", err)
	}

	for i := 0; i < HalfKPSize; i++ {
		if err := binary.Write(f, binary.LittleEndian, &n.L1Weights[i]); err != nil {
			return fmt.Errorf("failed to write L1 weights at %d: %w", i, err)
		}
	}

	if err := binary.Write(f, binary.LittleEndian, &n.L1Bias); err != nil {
		return fmt.Errorf("failed to write L1 bias: %w", err)
	}

	if err := binary.Write(f, binary.LittleEndian, &n.OutputWeights); err != nil {
		return fmt.Errorf("failed to write output weights: %w", err)
	}

	if err := binary.Write(f, binary.LittleEndian, &n.OutputBias); err != nil {
		return fmt.Errorf("failed to write output bias: %w", err)
	}

	return nil
}
