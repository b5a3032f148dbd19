package generator

import (
	"strings"
	"text/template"

	"github.com/lithammer/dedent"
)

var (
	// The testbench stub appended to a module's source file. It stays inside
	// a block comment until a developer uncomments it.
	testbenchTpl = template.Must(template.New("testbench").Parse(`

/*
module {{.Testbench}}();
{{- range .Ports}}
	{{.}}
{{- end}}

	// Clock generation
	parameter PERIOD = {{.Period}}; // period = length of clock
	initial begin
		{{.Clock}} <= 0;
		forever #(PERIOD/2) {{.Clock}} = ~{{.Clock}};
	end

	{{.Module}} dut (.*); // ".*" Implicitly connects all ports to variables with matching names

	initial begin

		repeat ({{.Repeat}}) @(posedge {{.Clock}});
		$stop; // End simulation
	end
endmodule
*/
`))

	// The ModelSim run script. Ordering of vlog lines follows Sources.
	runScriptTpl = template.Must(template.New("runlab").Parse(strings.TrimPrefix(dedent.Dedent(`
		# File generated by svaccel.
		# Runlab format was adopted from the UW EE 271 course files.

		# Create work library
		vlib {{.Library}}

		# Compile Verilog
		#     All Verilog files that are part of this design should have
		#     their own "vlog" line below.
		{{range .Sources}}vlog "./{{.}}"
		{{end}}
		# Call vsim to invoke simulator
		#     Make sure the last item on the line is the name of the
		#     testbench module you want to execute.
		vsim -voptargs="+acc" -t 1ps -lib {{.Library}} {{.Testbench}}

		# Source the wave do file
		#     This should be the file that sets up the signal window for
		#     the module you are testing.
		do {{.WaveFile}}

		# Set the window types
		view wave
		view structure
		view signals

		# Run the simulation
		run -all


		# END
		`), "\n")))

	// The simulator launch helper, one install path per line.
	launcherTpl = template.Must(template.New("launcher").Parse(
		`{{range .}}{{.}}
{{end}}`))
)

// descriptorText is the DE1-SoC JTAG chain description for the Quartus
// programmer. It has no per-module content. The Cfg action line starts at
// column 0.
const descriptorText = `/* Quartus Prime Version 17.0.0 Build 595 04/25/2017 SJ Lite Edition */
JedecChain;
	FileRevision(JESD32A);
	DefaultMfr(6E);

	P ActionCode(Ign)
		Device PartName(SOCVHPS) MfrSpec(OpMask(0));
P ActionCode(Cfg)
		Device PartName(5CSEMA5F31) Path("./output_files/") File("DE1_SoC.sof") MfrSpec(OpMask(1));

ChainEnd;

AlteraBegin;
	ChainType(JTAG);
AlteraEnd;
`
